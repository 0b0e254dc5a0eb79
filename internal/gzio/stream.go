// Package gzio provides the sequential stream primitives used to persist
// ordinance state inside a city save.
//
// Fields are fixed-width and unpadded. Callers only go through the Writer and
// Reader interfaces; the gz-string layout is owned by the stream
// implementation and must never be hand-rolled by callers.
package gzio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MaxStringLength bounds the byte length accepted for a gz-string on read.
const MaxStringLength = 1 << 20

// Stream errors
var (
	ErrStringTooLong = errors.New("gz-string exceeds maximum length")
)

// Writer is the output side of a host stream.
// Once a write fails the error is sticky and every later write returns it.
type Writer interface {
	// Err returns the first error the stream reported, or nil.
	Err() error
	WriteUint8(v uint8) error
	WriteUint16(v uint16) error
	WriteUint32(v uint32) error
	WriteInt32(v int32) error
	WriteInt64(v int64) error
	WriteFloat32(v float32) error
	// WriteString writes a gz-string.
	WriteString(s string) error
}

// Reader is the input side of a host stream.
// Once a read fails the error is sticky and every later read returns it.
type Reader interface {
	// Err returns the first error the stream reported, or nil.
	Err() error
	ReadUint8() (uint8, error)
	ReadUint16() (uint16, error)
	ReadUint32() (uint32, error)
	ReadInt32() (int32, error)
	ReadInt64() (int64, error)
	ReadFloat32() (float32, error)
	// ReadString reads a gz-string.
	ReadString() (string, error)
}

// WriteBool writes a boolean as a single byte (0 or 1).
func WriteBool(w Writer, v bool) error {
	var b uint8
	if v {
		b = 1
	}
	return w.WriteUint8(b)
}

// ReadBool reads a single byte boolean. Any non-zero byte is true.
func ReadBool(r Reader) (bool, error) {
	b, err := r.ReadUint8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// BinaryWriter is a little-endian Writer over an io.Writer.
type BinaryWriter struct {
	w   io.Writer
	err error
	buf [8]byte
}

// NewWriter creates a BinaryWriter that writes to w.
func NewWriter(w io.Writer) *BinaryWriter {
	return &BinaryWriter{w: w}
}

// Err returns the sticky write error.
func (bw *BinaryWriter) Err() error {
	return bw.err
}

func (bw *BinaryWriter) write(field string, p []byte) error {
	if bw.err != nil {
		return bw.err
	}
	if _, err := bw.w.Write(p); err != nil {
		bw.err = fmt.Errorf("gzio: write %s: %w", field, err)
		return bw.err
	}
	return nil
}

// WriteUint8 writes a single byte.
func (bw *BinaryWriter) WriteUint8(v uint8) error {
	bw.buf[0] = v
	return bw.write("uint8", bw.buf[:1])
}

// WriteUint16 writes a little-endian uint16.
func (bw *BinaryWriter) WriteUint16(v uint16) error {
	binary.LittleEndian.PutUint16(bw.buf[:2], v)
	return bw.write("uint16", bw.buf[:2])
}

// WriteUint32 writes a little-endian uint32.
func (bw *BinaryWriter) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(bw.buf[:4], v)
	return bw.write("uint32", bw.buf[:4])
}

// WriteInt32 writes a little-endian two's complement int32.
func (bw *BinaryWriter) WriteInt32(v int32) error {
	binary.LittleEndian.PutUint32(bw.buf[:4], uint32(v))
	return bw.write("int32", bw.buf[:4])
}

// WriteInt64 writes a little-endian two's complement int64.
func (bw *BinaryWriter) WriteInt64(v int64) error {
	binary.LittleEndian.PutUint64(bw.buf[:8], uint64(v))
	return bw.write("int64", bw.buf[:8])
}

// WriteFloat32 writes an IEEE-754 single precision float.
func (bw *BinaryWriter) WriteFloat32(v float32) error {
	binary.LittleEndian.PutUint32(bw.buf[:4], math.Float32bits(v))
	return bw.write("float32", bw.buf[:4])
}

// WriteString writes a gz-string: uint32 byte length followed by the bytes.
func (bw *BinaryWriter) WriteString(s string) error {
	if len(s) > MaxStringLength {
		if bw.err == nil {
			bw.err = fmt.Errorf("gzio: write string: %w", ErrStringTooLong)
		}
		return bw.err
	}
	if err := bw.WriteUint32(uint32(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return bw.write("string", []byte(s))
}

// BinaryReader is a little-endian Reader over an io.Reader.
type BinaryReader struct {
	r   io.Reader
	err error
	buf [8]byte
}

// NewReader creates a BinaryReader that reads from r.
func NewReader(r io.Reader) *BinaryReader {
	return &BinaryReader{r: r}
}

// Err returns the sticky read error.
func (br *BinaryReader) Err() error {
	return br.err
}

func (br *BinaryReader) read(field string, p []byte) error {
	if br.err != nil {
		return br.err
	}
	if _, err := io.ReadFull(br.r, p); err != nil {
		br.err = fmt.Errorf("gzio: read %s: %w", field, err)
		return br.err
	}
	return nil
}

// ReadUint8 reads a single byte.
func (br *BinaryReader) ReadUint8() (uint8, error) {
	if err := br.read("uint8", br.buf[:1]); err != nil {
		return 0, err
	}
	return br.buf[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (br *BinaryReader) ReadUint16() (uint16, error) {
	if err := br.read("uint16", br.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(br.buf[:2]), nil
}

// ReadUint32 reads a little-endian uint32.
func (br *BinaryReader) ReadUint32() (uint32, error) {
	if err := br.read("uint32", br.buf[:4]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(br.buf[:4]), nil
}

// ReadInt32 reads a little-endian int32.
func (br *BinaryReader) ReadInt32() (int32, error) {
	if err := br.read("int32", br.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(br.buf[:4])), nil
}

// ReadInt64 reads a little-endian int64.
func (br *BinaryReader) ReadInt64() (int64, error) {
	if err := br.read("int64", br.buf[:8]); err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(br.buf[:8])), nil
}

// ReadFloat32 reads an IEEE-754 single precision float.
func (br *BinaryReader) ReadFloat32() (float32, error) {
	if err := br.read("float32", br.buf[:4]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(br.buf[:4])), nil
}

// ReadString reads a gz-string written by WriteString.
func (br *BinaryReader) ReadString() (string, error) {
	n, err := br.ReadUint32()
	if err != nil {
		return "", err
	}
	if n > MaxStringLength {
		br.err = fmt.Errorf("gzio: read string of %d bytes: %w", n, ErrStringTooLong)
		return "", br.err
	}
	if n == 0 {
		return "", nil
	}
	p := make([]byte, n)
	if err := br.read("string", p); err != nil {
		return "", err
	}
	return string(p), nil
}
