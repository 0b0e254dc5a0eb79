package property

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/city-lottery/internal/gzio"
)

// BagVersion is the only serialized bag format version.
const BagVersion uint32 = 1

// Bag errors
var (
	ErrUnsupportedVersion = errors.New("unsupported property bag version")
)

// Bag is an ordered collection of records. Iteration order is insertion
// order. Duplicate ids are allowed; lookups return the first match.
//
// The zero value is an empty bag ready to use. Assigning a Bag shares its
// backing array, use Clone for an independent copy.
type Bag struct {
	records []Record
}

// NewBag creates a bag holding the given records in order.
func NewBag(records ...Record) Bag {
	b := Bag{}
	if len(records) > 0 {
		b.records = append(make([]Record, 0, len(records)), records...)
	}
	return b
}

// AddUint32 appends an unsigned property.
func (b *Bag) AddUint32(id uint32, v uint32) {
	b.records = append(b.records, NewRecord(id, Uint32Value(v)))
}

// AddInt32 appends a signed property.
func (b *Bag) AddInt32(id uint32, v int32) {
	b.records = append(b.records, NewRecord(id, Int32Value(v)))
}

// AddFloat32 appends a float property.
func (b *Bag) AddFloat32(id uint32, v float32) {
	b.records = append(b.records, NewRecord(id, Float32Value(v)))
}

// Get returns the first record with the given id.
func (b Bag) Get(id uint32) (Record, bool) {
	for _, r := range b.records {
		if r.MatchesID(id) {
			return r, true
		}
	}
	return Record{}, false
}

// Has reports whether any record carries the given id.
func (b Bag) Has(id uint32) bool {
	_, ok := b.Get(id)
	return ok
}

// Remove deletes the first record with the given id and reports whether one
// was removed.
func (b *Bag) Remove(id uint32) bool {
	for i, r := range b.records {
		if r.MatchesID(id) {
			b.records = append(b.records[:i:i], b.records[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the bag.
func (b *Bag) Clear() {
	b.records = nil
}

// Len returns the number of records.
func (b Bag) Len() int {
	return len(b.records)
}

// Records returns a copy of the records in order.
func (b Bag) Records() []Record {
	out := make([]Record, len(b.records))
	copy(out, b.records)
	return out
}

// Each calls fn for every record in order.
func (b Bag) Each(fn func(Record)) {
	for _, r := range b.records {
		fn(r)
	}
}

// Clone returns an independent copy of the bag.
func (b Bag) Clone() Bag {
	return NewBag(b.records...)
}

// Encode writes the bag version, the record count and every record in order.
func (b Bag) Encode(w gzio.Writer) error {
	if err := w.Err(); err != nil {
		return err
	}

	if err := w.WriteUint32(BagVersion); err != nil {
		return err
	}
	if err := w.WriteUint32(uint32(len(b.records))); err != nil {
		return err
	}

	for i, r := range b.records {
		if err := r.Encode(w); err != nil {
			return fmt.Errorf("encode property %d of %d: %w", i+1, len(b.records), err)
		}
	}

	return nil
}

// Decode replaces the bag contents with a bag written by Encode.
// The bag is only modified when the whole bag decodes successfully.
func (b *Bag) Decode(r gzio.Reader) error {
	if err := r.Err(); err != nil {
		return err
	}

	version, err := r.ReadUint32()
	if err != nil {
		return err
	}
	if version != BagVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	count, err := r.ReadUint32()
	if err != nil {
		return err
	}

	// Grow as records arrive so a corrupt count cannot force a huge allocation
	var records []Record
	for i := uint32(0); i < count; i++ {
		var rec Record
		if err := rec.Decode(r); err != nil {
			return fmt.Errorf("decode property %d of %d: %w", i+1, count, err)
		}
		records = append(records, rec)
	}

	b.records = records
	return nil
}
