// Package cache implements the Multi-Queue (MQ) admission/eviction policy:
// a multi-level LRU with frequency-based promotion, expiry-driven demotion,
// and a ghost history that lets a recently evicted key re-enter the cache at
// the level its past access count earned, rather than starting cold.
//
// The policy is the one described in the MQ paper (Zhou, Philbin, Li):
// http://opera.ucsd.edu/paper/TPDS-final.pdf
package cache

import (
	"container/list"
	"math/bits"
)

const (
	defaultLifeTime   = 32
	defaultQueueCount = 8
)

// entry is the cache-resident record for one key.
type entry[V any] struct {
	value       V
	level       int
	accessCount uint64
	expireTime  uint64
	elem        *list.Element // element of MQ.queues[level], Value is the key
}

// historyItem remembers the access count and expiry of a key that has been
// evicted from the cache proper, so that a later Put can re-admit it at the
// level it had earned rather than at level zero.
type historyItem struct {
	accessCount uint64
	expireTime  uint64
	elem        *list.Element // element of MQ.historyQueue, Value is the key
}

// MQ is a generic multi-queue cache. It is not safe for concurrent use; the
// caller owns serialization, matching the rest of this module's
// single-threaded design.
type MQ[K comparable, V any] struct {
	currentTime uint64
	lifeTime    uint64
	queueCount  int
	perQueueCap uint64
	onEvict     func(K, V)

	cache  map[K]*entry[V]
	queues []*list.List // queues[level], each element's Value is a K

	history      map[K]*historyItem
	historyQueue *list.List // eviction order, each element's Value is a K

	hitCount          uint64
	missCount         uint64
	evictionCount     uint64
	historyHitCount   uint64
	historyMissCount  uint64
}

// Option configures an MQ at construction time.
type Option[K comparable, V any] func(*MQ[K, V])

// WithLifeTime overrides the default life time (32 ticks) before an
// untouched entry becomes eligible for demotion.
func WithLifeTime[K comparable, V any](lifeTime uint64) Option[K, V] {
	return func(m *MQ[K, V]) { m.lifeTime = lifeTime }
}

// WithQueueCount overrides the default queue count (8).
func WithQueueCount[K comparable, V any](queueCount int) Option[K, V] {
	return func(m *MQ[K, V]) { m.queueCount = queueCount }
}

// WithOnEvict installs a callback invoked with the key and value of every
// entry evicted from the bottom of queue 0. The callback runs synchronously
// inside Put; MQ does not catch or report anything it does.
func WithOnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(m *MQ[K, V]) { m.onEvict = fn }
}

// New creates an MQ with the given total capacity, distributed evenly across
// the queue count.
func New[K comparable, V any](capacity uint64, opts ...Option[K, V]) *MQ[K, V] {
	m := &MQ[K, V]{
		lifeTime:   defaultLifeTime,
		queueCount: defaultQueueCount,
		cache:      make(map[K]*entry[V]),
		history:    make(map[K]*historyItem),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.queueCount < 1 {
		m.queueCount = 1
	}
	m.perQueueCap = capacity / uint64(m.queueCount)
	m.queues = make([]*list.List, m.queueCount)
	for i := range m.queues {
		m.queues[i] = list.New()
	}
	m.historyQueue = list.New()
	return m
}

// SetOnEvict installs or replaces the eviction callback after construction.
func (m *MQ[K, V]) SetOnEvict(fn func(K, V)) {
	m.onEvict = fn
}

// levelFor computes floor(log2(accessCount)) clamped to [0, queueCount-1].
func levelFor(accessCount uint64, queueCount int) int {
	if accessCount < 1 {
		accessCount = 1
	}
	level := bits.Len64(accessCount) - 1
	if level > queueCount-1 {
		level = queueCount - 1
	}
	if level < 0 {
		level = 0
	}
	return level
}

// Get returns the value for key and whether it was present. A hit refreshes
// the entry's expiry and access count and may promote it to a higher queue;
// promotion is monotonic here and only reversed by the demotion sweep run
// from Put.
func (m *MQ[K, V]) Get(key K) (V, bool) {
	m.currentTime++
	e, ok := m.cache[key]
	if !ok {
		m.missCount++
		var zero V
		return zero, false
	}

	e.expireTime = m.currentTime + m.lifeTime
	e.accessCount++

	requestedLevel := levelFor(e.accessCount, m.queueCount)
	if requestedLevel > e.level {
		m.queues[e.level].Remove(e.elem)
		e.level = requestedLevel
		e.elem = m.queues[e.level].PushBack(key)
	}

	m.hitCount++
	return e.value, true
}

// Put stores value under key. If key was recently evicted, its remembered
// access count is used to compute the admission level, promoting a
// previously "hot" key straight back into a high queue instead of level 0.
// Put always runs the demotion sweep afterward.
func (m *MQ[K, V]) Put(key K, value V) {
	accessCount := uint64(1)
	if h, ok := m.history[key]; ok {
		accessCount = h.accessCount
		m.historyQueue.Remove(h.elem)
		delete(m.history, key)
		m.historyHitCount++
	} else {
		m.historyMissCount++
	}

	level := levelFor(accessCount, m.queueCount)
	elem := m.queues[level].PushBack(key)
	m.cache[key] = &entry[V]{
		value:       value,
		level:       level,
		accessCount: accessCount,
		expireTime:  m.currentTime + m.lifeTime,
		elem:        elem,
	}

	m.demote()
}

// demote walks the queues from the top down, demoting or evicting at most
// one candidate per queue. Put adds at most one element, so at most one
// queue can be newly over capacity; expiry-driven demotion is opportunistic,
// not exhaustive, exactly as in the source algorithm.
func (m *MQ[K, V]) demote() {
	for i := m.queueCount - 1; i >= 0; i-- {
		q := m.queues[i]
		if q.Len() == 0 {
			continue
		}

		front := q.Front()
		key := front.Value.(K)
		e := m.cache[key]

		overCapacity := uint64(q.Len()) > m.perQueueCap
		expired := e.expireTime < m.currentTime
		if !overCapacity && !expired {
			continue
		}

		q.Remove(front)
		if i > 0 {
			e.level = i - 1
			e.elem = m.queues[i-1].PushBack(key)
			continue
		}

		// Bottom of queue 0: evict.
		if m.onEvict != nil {
			m.onEvict(key, e.value)
		}
		m.evictionCount++
		delete(m.cache, key)

		helem := m.historyQueue.PushBack(key)
		m.history[key] = &historyItem{accessCount: e.accessCount, expireTime: e.expireTime, elem: helem}
		if uint64(len(m.history)) > m.perQueueCap*2 {
			oldest := m.historyQueue.Front()
			m.historyQueue.Remove(oldest)
			delete(m.history, oldest.Value.(K))
		}
	}
}

// Each calls fn for every entry currently resident in the cache, in no
// specified order, without affecting level or expiry. It exists to support
// a caller-level FlushAll (spec-recommended, never present in the source):
// writing back every dirty page without evicting any of them.
func (m *MQ[K, V]) Each(fn func(K, V)) {
	for k, e := range m.cache {
		fn(k, e.value)
	}
}

// HitCount returns the number of cache hits observed by Get.
func (m *MQ[K, V]) HitCount() uint64 { return m.hitCount }

// MissCount returns the number of cache misses observed by Get.
func (m *MQ[K, V]) MissCount() uint64 { return m.missCount }

// EvictionCount returns the number of entries evicted from queue 0.
func (m *MQ[K, V]) EvictionCount() uint64 { return m.evictionCount }

// HistoryHitCount returns the number of Puts that found the key in history.
func (m *MQ[K, V]) HistoryHitCount() uint64 { return m.historyHitCount }

// HistoryMissCount returns the number of Puts that found no history for the key.
func (m *MQ[K, V]) HistoryMissCount() uint64 { return m.historyMissCount }
