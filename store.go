// Package colkernel is the embedded kernel of a columnar data store: a
// disk-backed positional index (see pagefile.Index), an append-only typed
// value file (see pagefile.Value), and the in-memory column map in this
// file, which compresses a write-once, scan-heavy column of duplicate
// values into run-length segments.
package colkernel

import (
	"cmp"
)

// Segment is a closed interval [Start, End] of column ordinals sharing one
// value.
type Segment struct {
	Start uint64
	End   uint64
}

// valueEntry is one value's run-length segment list: a non-overlapping,
// Start-sorted []Segment. Adjacent segments are merged only by touch
// (extending the segment a new column lands next to), never by a
// background scan across the list — Store.Put never spontaneously merges
// two segments that happen to have become adjacent.
type valueEntry[T cmp.Ordered] struct {
	value    T
	segments []Segment
}

// Store holds, in memory, a value-to-segments map and an optional
// ordinal-to-value fast table. T must be cmp.Ordered because the map is
// specified as ordered by value — Scan and Aggregate visit values in
// ascending order, which a plain Go map cannot promise on its own.
type Store[T cmp.Ordered] struct {
	entries []*valueEntry[T] // sorted ascending by value
	index   map[T]*valueEntry[T]

	fast    map[uint64]T
	useFast bool

	// createDiskSegment and findDiskSegments are the flush path's declared
	// seam: a complete implementation would sort and dump the write store
	// into an on-disk segment here, and locate existing on-disk segments
	// for a value here. Neither is implemented — on-disk segment storage
	// and range queries over it are out of scope — and Put/Get/Scan/
	// Aggregate never call them.
	createDiskSegment func(value T, segments []Segment) error
	findDiskSegments  func(value T) ([]Segment, error)
}

// New opens a Store rooted at path. The on-disk segment files a complete
// implementation would keep under path are never created or read — only
// the in-memory write store backs Put/Get/Scan/Aggregate — so path is
// retained for interface fidelity with the original store<T>(path) but is
// otherwise unused today.
func New[T cmp.Ordered](path string) (*Store[T], error) {
	_ = path
	return &Store[T]{
		index:   make(map[T]*valueEntry[T]),
		fast:    make(map[uint64]T),
		useFast: true,
	}, nil
}

// IsOpen always reports true once constructed: the write store is pure
// in-memory state, and this matches the original store<T>::is_open, which
// is a literal `return true;` stub since the store has no file handle of
// its own to be closed.
func (s *Store[T]) IsOpen() bool {
	return true
}

// Count returns the number of distinct values held, not the sum of
// segment lengths.
func (s *Store[T]) Count() uint64 {
	return uint64(len(s.entries))
}

// SetUseFastColumnLookup toggles the ordinal-to-value side table. Disabling
// it clears the table; re-enabling does not repopulate it — it is rebuilt
// lazily as subsequent Puts occur.
func (s *Store[T]) SetUseFastColumnLookup(use bool) {
	if !use {
		s.fast = make(map[uint64]T)
	}
	s.useFast = use
}

// search returns the index in s.entries where value belongs (to insert
// before, if not found) and whether it was found there.
func (s *Store[T]) search(value T) (int, bool) {
	lo, hi := 0, len(s.entries)
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case s.entries[mid].value == value:
			return mid, true
		case cmp.Less(s.entries[mid].value, value):
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return lo, false
}

// Put records that column holds value. If value is new, a fresh
// [column, column] segment is created. Otherwise the existing segment list
// is walked in order and the column is merged into, or inserted before, the
// first segment it touches or passes — see mergeColumn for the exact
// tie-break.
func (s *Store[T]) Put(column uint64, value T) {
	if s.useFast {
		s.fast[column] = value
	}

	if ve, ok := s.index[value]; ok {
		mergeColumn(ve, column)
		return
	}

	ve := &valueEntry[T]{value: value, segments: []Segment{{Start: column, End: column}}}
	s.index[value] = ve

	at, _ := s.search(value)
	s.entries = append(s.entries, nil)
	copy(s.entries[at+1:], s.entries[at:])
	s.entries[at] = ve
}

// mergeColumn walks ve's segment list in order, stopping at the first
// segment the column extends or the first segment it falls strictly
// before. If column matches neither extension case for any segment and
// comes after all of them, it is appended as a new trailing segment. This
// is the source's exact walk, including its consequence: inserting a
// column between two segments that could merge into one contiguous run
// instead extends only the first one touched and leaves the two adjacent
// but unmerged.
func mergeColumn[T cmp.Ordered](ve *valueEntry[T], column uint64) {
	for i := range ve.segments {
		seg := &ve.segments[i]
		switch {
		case column == seg.Start-1:
			seg.Start--
			return
		case column == seg.End+1:
			seg.End++
			return
		case seg.Start > column:
			ve.segments = append(ve.segments, Segment{})
			copy(ve.segments[i+1:], ve.segments[i:])
			ve.segments[i] = Segment{Start: column, End: column}
			return
		}
	}
	ve.segments = append(ve.segments, Segment{Start: column, End: column})
}

// Get reports the value stored at column, if any. With the fast table
// enabled this is a direct lookup; otherwise it walks the ordered
// value-to-segments map, breaking out of each value's segment list as soon
// as it passes column.
func (s *Store[T]) Get(column uint64) (T, bool) {
	if s.useFast {
		v, ok := s.fast[column]
		return v, ok
	}

	for _, ve := range s.entries {
		for _, seg := range ve.segments {
			if seg.Start > column {
				break
			}
			if column >= seg.Start && column <= seg.End {
				return ve.value, true
			}
		}
	}

	var zero T
	return zero, false
}

// Scan returns, for every value satisfying pred, that value's full segment
// list, values visited in ascending order. Segments from different values
// may overlap only if an earlier Put for one value was later overwritten at
// the same column by a different value — Scan does not detect or resolve
// that; it is a property of the underlying write sequence, not of Scan.
func (s *Store[T]) Scan(pred func(T) bool) []Segment {
	var out []Segment
	for _, ve := range s.entries {
		if !pred(ve.value) {
			continue
		}
		out = append(out, ve.segments...)
	}
	return out
}

// Aggregate calls agg once per distinct value, in ascending order, with the
// value, a pointer to the running accumulator, and the number of columns
// holding that value (the sum of its segment lengths). It returns the final
// accumulator.
func (s *Store[T]) Aggregate(agg func(value T, acc *T, count uint64)) T {
	var acc T
	for _, ve := range s.entries {
		var count uint64
		for _, seg := range ve.segments {
			count += seg.End - seg.Start + 1
		}
		agg(ve.value, &acc, count)
	}
	return acc
}

// Close is a no-op today: the write store holds no file handle, and the
// disk-segment flush path it would otherwise drain is an unimplemented
// seam (see createDiskSegment/findDiskSegments).
func (s *Store[T]) Close() error {
	return nil
}
