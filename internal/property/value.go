// Package property models ordinance effects: typed scalar records keyed by a
// stable 32-bit property id, and the ordered bag that holds them.
package property

import (
	"fmt"
	"math"
)

// Kind identifies the scalar type held by a Value.
// The numeric values are the type tags written to the stream.
type Kind uint16

const (
	KindUint32  Kind = 0x0003
	KindInt32   Kind = 0x0007
	KindFloat32 Kind = 0x0009
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindUint32:
		return "uint32"
	case KindInt32:
		return "int32"
	case KindFloat32:
		return "float32"
	default:
		return fmt.Sprintf("kind(0x%04x)", uint16(k))
	}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	return k == KindUint32 || k == KindInt32 || k == KindFloat32
}

// Value is a tagged scalar with exactly one active type.
type Value struct {
	kind Kind
	bits uint32
}

// Uint32Value creates an unsigned value.
func Uint32Value(v uint32) Value {
	return Value{kind: KindUint32, bits: v}
}

// Int32Value creates a signed value.
func Int32Value(v int32) Value {
	return Value{kind: KindInt32, bits: uint32(v)}
}

// Float32Value creates a single precision float value.
func Float32Value(v float32) Value {
	return Value{kind: KindFloat32, bits: math.Float32bits(v)}
}

// Kind returns the active type.
func (v Value) Kind() Kind {
	return v.kind
}

// Uint32 returns the value if it is unsigned.
func (v Value) Uint32() (uint32, bool) {
	if v.kind != KindUint32 {
		return 0, false
	}
	return v.bits, true
}

// Int32 returns the value if it is signed.
func (v Value) Int32() (int32, bool) {
	if v.kind != KindInt32 {
		return 0, false
	}
	return int32(v.bits), true
}

// Float32 returns the value if it is a float.
func (v Value) Float32() (float32, bool) {
	if v.kind != KindFloat32 {
		return 0, false
	}
	return math.Float32frombits(v.bits), true
}

// Interface returns the active scalar as uint32, int32 or float32.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindUint32:
		return v.bits
	case KindInt32:
		return int32(v.bits)
	case KindFloat32:
		return math.Float32frombits(v.bits)
	default:
		return nil
	}
}

// String formats the active scalar.
func (v Value) String() string {
	return fmt.Sprintf("%v", v.Interface())
}
