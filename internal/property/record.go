package property

import (
	"errors"
	"fmt"

	"github.com/stwalsh4118/city-lottery/internal/gzio"
)

// Record errors
var (
	ErrUnknownValueKind = errors.New("unknown property value type")
)

// Record is a single effect entry: a property id and its value.
// Neither the id nor the value type changes after construction.
type Record struct {
	id    uint32
	value Value
}

// NewRecord creates a record.
func NewRecord(id uint32, value Value) Record {
	return Record{id: id, value: value}
}

// ID returns the property id.
func (r Record) ID() uint32 {
	return r.id
}

// Value returns the property value.
func (r Record) Value() Value {
	return r.value
}

// MatchesID reports whether the record carries the given property id.
func (r Record) MatchesID(id uint32) bool {
	return r.id == id
}

// Encode writes the property id, the type tag and the value.
func (r Record) Encode(w gzio.Writer) error {
	if err := w.Err(); err != nil {
		return err
	}
	if !r.value.kind.Valid() {
		return fmt.Errorf("property 0x%08x: %w: %s", r.id, ErrUnknownValueKind, r.value.kind)
	}

	if err := w.WriteUint32(r.id); err != nil {
		return err
	}
	if err := w.WriteUint16(uint16(r.value.kind)); err != nil {
		return err
	}

	switch r.value.kind {
	case KindInt32:
		return w.WriteInt32(int32(r.value.bits))
	case KindFloat32:
		f, _ := r.value.Float32()
		return w.WriteFloat32(f)
	default:
		return w.WriteUint32(r.value.bits)
	}
}

// Decode reads a record written by Encode.
// On failure the record is left in an unspecified state and must be discarded.
func (r *Record) Decode(rd gzio.Reader) error {
	if err := rd.Err(); err != nil {
		return err
	}

	id, err := rd.ReadUint32()
	if err != nil {
		return err
	}
	r.id = id

	tag, err := rd.ReadUint16()
	if err != nil {
		return err
	}

	switch Kind(tag) {
	case KindUint32:
		v, err := rd.ReadUint32()
		if err != nil {
			return err
		}
		r.value = Uint32Value(v)
	case KindInt32:
		v, err := rd.ReadInt32()
		if err != nil {
			return err
		}
		r.value = Int32Value(v)
	case KindFloat32:
		v, err := rd.ReadFloat32()
		if err != nil {
			return err
		}
		r.value = Float32Value(v)
	default:
		return fmt.Errorf("property 0x%08x: %w: %s", id, ErrUnknownValueKind, Kind(tag))
	}

	return nil
}
