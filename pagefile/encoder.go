package pagefile

import "unsafe"

// Encoder is the pluggable capability a Value[T] uses to turn a T into
// bytes and back. This generalizes the original C++ translator<T> (two
// virtual methods, put/get against a stream) into a Go interface with a
// concrete, monomorphized default below, per the design note preferring a
// generic parameter over virtual dispatch.
type Encoder[T any] interface {
	// Size returns the fixed, encoded width of a value in bytes.
	Size() int
	Encode(v T) []byte
	Decode(b []byte) T
}

// RawEncoder is the default Encoder: a raw, architecture-native byte copy
// of T, exactly as the original value<T>'s default translator writes
// sizeof(value) bytes straight from the value's own memory. T must be a
// fixed-layout type with no pointers (numeric types, fixed-size arrays and
// structs of such) — anything else will not round-trip.
type RawEncoder[T any] struct{}

// Size returns sizeof(T).
func (RawEncoder[T]) Size() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// Encode copies v's in-memory representation into a fresh byte slice.
func (RawEncoder[T]) Encode(v T) []byte {
	size := int(unsafe.Sizeof(v))
	buf := make([]byte, size)
	if size > 0 {
		*(*T)(unsafe.Pointer(&buf[0])) = v
	}
	return buf
}

// Decode reinterprets the leading sizeof(T) bytes of b as a T.
func (RawEncoder[T]) Decode(b []byte) T {
	var v T
	size := int(unsafe.Sizeof(v))
	if size == 0 {
		return v
	}
	return *(*T)(unsafe.Pointer(&b[:size][0]))
}
