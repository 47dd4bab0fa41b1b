package pagefile

import "github.com/pkg/errors"

// ErrNotOpen is returned by any operation attempted on an Index or Value
// whose backing file could not be opened, or that has already been closed.
var ErrNotOpen = errors.New("pagefile: file is not open")

// ErrOutOfRange is returned by EntryPositionFromOrdinal when the requested
// ordinal's byte offset (ordinal*8) would overflow uint64.
var ErrOutOfRange = errors.New("pagefile: ordinal out of range")
