package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMQBasicHit(t *testing.T) {
	m := New[int, int](1024)
	m.Put(1, 10)

	v, ok := m.Get(1)
	require.True(t, ok)
	require.Equal(t, 10, v)
	require.EqualValues(t, 1, m.HitCount())
}

func TestMQRepeatedHitsPromoteLevel(t *testing.T) {
	m := New[int, int](1024)
	m.Put(1, 10)

	// One Get as in the basic-hit case, then 1024 more.
	for i := 0; i < 1025; i++ {
		v, ok := m.Get(1)
		require.True(t, ok)
		require.Equal(t, 10, v)
	}

	require.EqualValues(t, 1025, m.HitCount())
	e := m.cache[1]
	require.Equal(t, m.queueCount-1, e.level)
}

func TestMQEvictionUnderOverload(t *testing.T) {
	m := New[int, int](1024)

	for i := 0; i < 100_000; i++ {
		m.Put(i, i*100)
	}

	for i := 0; i < 99_872; i++ {
		_, ok := m.Get(i)
		require.False(t, ok, "expected miss for key %d", i)
	}

	for i := 99_872; i < 100_000; i++ {
		v, ok := m.Get(i)
		require.True(t, ok, "expected hit for key %d", i)
		require.Equal(t, i*100, v)
	}

	require.EqualValues(t, 128, m.HitCount())
}

func TestMQEvictionCallback(t *testing.T) {
	var evicted []int
	m := New[int, int](8, WithQueueCount[int, int](8), WithOnEvict(func(k, v int) {
		evicted = append(evicted, k)
	}))

	for i := 0; i < 64; i++ {
		m.Put(i, i)
	}

	require.NotEmpty(t, evicted)
	require.Equal(t, int(m.EvictionCount()), len(evicted))
}

func TestMQGhostHistoryReadmitsAtEarnedLevel(t *testing.T) {
	m := New[int, int](16, WithQueueCount[int, int](4))

	m.Put(1, 1)
	for i := 0; i < 20; i++ {
		m.Get(1)
	}
	hotLevel := m.cache[1].level
	require.Greater(t, hotLevel, 0)

	// Force 1 out of the cache via a flood of unrelated puts so it lands in
	// history, then re-admit it and check it doesn't start back at level 0.
	// Puts alone never advance the logical clock, so each put is followed by
	// a missing-key Get; once 1 expires, the sweeps sink it to queue 0 and
	// evict it.
	for i := 2; i < 4000; i++ {
		m.Put(i, i)
		m.Get(0)
		if _, ok := m.cache[1]; !ok {
			break
		}
	}
	_, stillCached := m.cache[1]
	require.False(t, stillCached)

	h, ok := m.history[1]
	require.True(t, ok)
	require.Greater(t, h.accessCount, uint64(1))

	m.Put(1, 1)
	require.EqualValues(t, 1, m.HistoryHitCount())
	require.GreaterOrEqual(t, m.cache[1].level, 1)
}

func TestMQEachVisitsResidentEntries(t *testing.T) {
	m := New[int, int](1024)
	m.Put(1, 10)
	m.Put(2, 20)

	seen := map[int]int{}
	m.Each(func(k, v int) { seen[k] = v })

	require.Equal(t, map[int]int{1: 10, 2: 20}, seen)
}
