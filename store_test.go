package colkernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreOutOfOrderPutWalkStopsAtFirstTouchedSegment(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)

	s.Put(0, 42)
	s.Put(1, 42)
	s.Put(3, 42)
	// column 2 touches segment [0,1] (2 == seg.End+1) and is merged there;
	// the walk returns immediately and never reaches [3,3], so the two
	// segments stay separate even though they are now adjacent.
	s.Put(2, 42)

	segs := s.Scan(func(v int) bool { return v == 42 })
	require.Equal(t, []Segment{{Start: 0, End: 2}, {Start: 3, End: 3}}, segs)
}

func TestStoreNonAdjacentPutsStayUnmerged(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)

	s.Put(0, 42)
	s.Put(4, 42)
	s.Put(2, 42)

	segs := s.Scan(func(v int) bool { return v == 42 })
	require.Equal(t, []Segment{{Start: 0, End: 0}, {Start: 2, End: 2}, {Start: 4, End: 4}}, segs)
}

func TestStoreInsertionBetweenTouchingSegmentsDoesNotMergeAcross(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)

	s.Put(0, 7)
	s.Put(2, 7)
	// column 1 touches both neighbors; it must extend the first segment it
	// walks into (the one starting at 0) and stop there, never fusing the
	// two into [0,2] as a single entry, and never visiting segment [2,2].
	s.Put(1, 7)

	segs := s.Scan(func(v int) bool { return v == 7 })
	require.Equal(t, []Segment{{Start: 0, End: 1}, {Start: 2, End: 2}}, segs)
}

func TestStoreAggregateSumOfProducts(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)
	s.SetUseFastColumnLookup(false)

	col := uint64(0)
	for v := 0; v < 1000; v++ {
		for n := 0; n < 1000; n++ {
			s.Put(col, v)
			col++
		}
	}

	total := s.Aggregate(func(value int, acc *int, count uint64) {
		*acc += value * int(count)
	})
	require.Equal(t, 499_500_000, total)
}

func TestStoreGetUsesFastTableByDefault(t *testing.T) {
	s, err := New[string]("")
	require.NoError(t, err)

	s.Put(10, "alpha")
	s.Put(11, "beta")

	v, ok := s.Get(10)
	require.True(t, ok)
	require.Equal(t, "alpha", v)

	v, ok = s.Get(11)
	require.True(t, ok)
	require.Equal(t, "beta", v)

	_, ok = s.Get(12)
	require.False(t, ok)
}

func TestStoreGetWithoutFastTableWalksSegments(t *testing.T) {
	s, err := New[string]("")
	require.NoError(t, err)
	s.SetUseFastColumnLookup(false)

	s.Put(0, "a")
	s.Put(1, "a")
	s.Put(5, "b")

	v, ok := s.Get(1)
	require.True(t, ok)
	require.Equal(t, "a", v)

	v, ok = s.Get(5)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = s.Get(3)
	require.False(t, ok)
}

func TestStoreAggregateVisitsValuesInAscendingOrder(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)

	s.Put(0, 5)
	s.Put(1, 1)
	s.Put(2, 9)
	s.Put(3, 1)

	var seenValues []int
	s.Aggregate(func(value int, acc *int, count uint64) {
		seenValues = append(seenValues, value)
	})

	require.Equal(t, []int{1, 5, 9}, seenValues)
	require.Equal(t, uint64(3), s.Count())
}

func TestStoreCountTracksDistinctValues(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)

	require.EqualValues(t, 0, s.Count())
	s.Put(0, 1)
	s.Put(1, 1)
	require.EqualValues(t, 1, s.Count())
	s.Put(2, 2)
	require.EqualValues(t, 2, s.Count())
}

func TestStoreIsOpenAfterConstruction(t *testing.T) {
	s, err := New[int]("")
	require.NoError(t, err)
	require.True(t, s.IsOpen())
	require.NoError(t, s.Close())
}
