package pagefile

// maxOrdinal is the largest entry number whose byte offset (n*8) fits in a
// uint64 without wrapping.
const maxOrdinal = ^uint64(0) / 8

// EntryPosition is an opaque handle for a logical index entry. Internally it
// is always a multiple of 8: the byte offset of that entry's 64-bit slot
// inside the index file. It is not orderable by contract; equality is by
// byte offset, which the struct's single comparable field gives for free.
type EntryPosition struct {
	byteOffset uint64
}

// EntryPositionFromOrdinal builds the position for logical entry n. It
// rejects an n whose *8 would overflow uint64.
func EntryPositionFromOrdinal(n uint64) (EntryPosition, error) {
	if n > maxOrdinal {
		return EntryPosition{}, ErrOutOfRange
	}
	return EntryPosition{byteOffset: n * 8}, nil
}

// ByteOffset returns the byte offset into the index file.
func (p EntryPosition) ByteOffset() uint64 {
	return p.byteOffset
}

// Ordinal returns the logical entry number.
func (p EntryPosition) Ordinal() uint64 {
	return p.byteOffset / 8
}
