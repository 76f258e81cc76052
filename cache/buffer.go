package cache

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
)

// ErrInvalidCapacity is returned when a capacity <= 0 is requested.
var ErrInvalidCapacity = errors.New("cache: capacity must be > 0")

// Entry is a key/value pair returned by Entries.
type Entry[K comparable, V any] struct {
	Key   K
	Value V
}

// Buffer is a bounded least-recently-used key/value buffer.
//
// A Buffer is not safe for concurrent use; wrap it in Sync when several
// goroutines share it. Every operation is O(1) amortized except the snapshot
// accessors (Keys, Values, Entries, All) and shrinking via UpdateCapacity.
type Buffer[K comparable, V any] struct {
	m        map[K]*node[K, V]
	list     recency[K, V]
	capacity int

	hooks        Hooks[K, V]
	metrics      Metrics
	log          *slog.Logger
	silentRemove bool

	puts, matches, misses, removals, creates uint64
}

// New constructs a Buffer from opt. A zero Capacity selects DefaultCapacity;
// a negative one fails with ErrInvalidCapacity.
func New[K comparable, V any](opt Options[K, V]) (*Buffer[K, V], error) {
	if opt.Capacity < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}
	opt = opt.withDefaults()
	return &Buffer[K, V]{
		m:            make(map[K]*node[K, V]),
		capacity:     opt.Capacity,
		hooks:        opt.Hooks,
		metrics:      opt.Metrics,
		log:          opt.Logger,
		silentRemove: opt.SilentRemove,
	}, nil
}

// NewWithCapacity constructs a Buffer with no hooks. Unlike New, a zero
// capacity is rejected.
func NewWithCapacity[K comparable, V any](capacity int) (*Buffer[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	return New[K, V](Options[K, V]{Capacity: capacity})
}

// Capacity returns the current entry limit.
func (b *Buffer[K, V]) Capacity() int { return b.capacity }

// UpdateCapacity changes the entry limit. When the buffer holds more than
// capacity entries, the least recently used ones are evicted; each of them
// counts as a removal and is reported to AfterRemoval with isEvict=true and
// a nil newValue.
func (b *Buffer[K, V]) UpdateCapacity(capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	prev := b.capacity
	b.capacity = capacity

	var dropped []*node[K, V]
	for b.list.len > b.capacity {
		tail := b.list.back()
		b.detach(tail)
		b.removals++
		b.metrics.Evict(EvictResize)
		dropped = append(dropped, tail)
	}
	b.metrics.Size(b.list.len, b.capacity)
	b.log.Debug("lrubuffer: capacity updated",
		slog.Int("from", prev),
		slog.Int("to", capacity),
		slog.Int("evicted", len(dropped)),
	)

	for _, n := range dropped {
		b.hooks.AfterRemoval(true, n.key, n.val, nil)
	}
	return nil
}

// Put inserts or overwrites k→v and marks k as most recently used.
//
// On overwrite the previous value is returned with replaced=true and reported
// to AfterRemoval(false, k, old, &v). On insert, if the buffer overflows, the
// least recently used entry is evicted and reported to
// AfterRemoval(true, evictedKey, evictedValue, &v).
func (b *Buffer[K, V]) Put(k K, v V) (old V, replaced bool) {
	b.puts++
	b.metrics.Put()

	if n, ok := b.m[k]; ok {
		old = n.val
		n.val = v
		b.list.moveToFront(n)
		b.hooks.AfterRemoval(false, k, old, &v)
		return old, true
	}

	b.insert(k, v)
	return old, false
}

// Get returns the value for k and marks it as most recently used.
//
// On miss, CreateDefault is consulted. A created value is inserted like a
// new Put (without counting as one) and returned.
func (b *Buffer[K, V]) Get(k K) (V, bool) {
	if n, ok := b.m[k]; ok {
		b.matches++
		b.metrics.Hit()
		b.list.moveToFront(n)
		return n.val, true
	}
	b.misses++
	b.metrics.Miss()

	created, ok := b.hooks.CreateDefault(k)
	if !ok {
		var zero V
		return zero, false
	}
	b.creates++
	b.metrics.Create()

	// The hook may have stored k itself; the resident value wins.
	if n, ok := b.m[k]; ok {
		b.list.moveToFront(n)
		b.hooks.AfterRemoval(false, k, created, &n.val)
		return n.val, true
	}
	b.insert(k, created)
	return created, true
}

// Contains reports whether k is resident. It counts as a lookup: a hit is
// promoted to most recently used and counted as a match, a miss is counted
// as a miss. CreateDefault is never called.
func (b *Buffer[K, V]) Contains(k K) bool {
	n, ok := b.m[k]
	if !ok {
		b.misses++
		b.metrics.Miss()
		return false
	}
	b.matches++
	b.metrics.Hit()
	b.list.moveToFront(n)
	return true
}

// Peek returns the value for k without touching recency or counters.
func (b *Buffer[K, V]) Peek(k K) (V, bool) {
	if n, ok := b.m[k]; ok {
		return n.val, true
	}
	var zero V
	return zero, false
}

// Remove deletes k and returns its value. Explicit removals are not counted
// in RemovalCount. Unless Options.SilentRemove is set, AfterRemoval is called
// with isEvict=false and a nil newValue.
func (b *Buffer[K, V]) Remove(k K) (V, bool) {
	n, ok := b.m[k]
	if !ok {
		var zero V
		return zero, false
	}
	b.detach(n)
	b.metrics.Size(b.list.len, b.capacity)
	if !b.silentRemove {
		b.hooks.AfterRemoval(false, n.key, n.val, nil)
	}
	return n.val, true
}

// CreateDefault forwards to the configured hook without side effects.
func (b *Buffer[K, V]) CreateDefault(k K) (V, bool) { return b.hooks.CreateDefault(k) }

// AfterRemoval forwards to the configured hook without side effects.
func (b *Buffer[K, V]) AfterRemoval(isEvict bool, k K, v V, newValue *V) {
	b.hooks.AfterRemoval(isEvict, k, v, newValue)
}

// Len returns the number of resident entries.
func (b *Buffer[K, V]) Len() int { return b.list.len }

// IsEmpty reports whether Len() == 0.
func (b *Buffer[K, V]) IsEmpty() bool { return b.list.len == 0 }

// Clear drops every entry. Counters and capacity are kept and no hooks run.
func (b *Buffer[K, V]) Clear() {
	clear(b.m)
	b.list.reset()
	b.metrics.Size(0, b.capacity)
}

// PutCount returns the number of Put calls, inserts and overwrites alike.
func (b *Buffer[K, V]) PutCount() uint64 { return b.puts }

// MatchCount returns the number of Get/Contains hits.
func (b *Buffer[K, V]) MatchCount() uint64 { return b.matches }

// MissCount returns the number of Get/Contains misses.
func (b *Buffer[K, V]) MissCount() uint64 { return b.misses }

// RemovalCount returns the number of capacity evictions (overflow and shrink).
func (b *Buffer[K, V]) RemovalCount() uint64 { return b.removals }

// CreateCount returns the number of values supplied by CreateDefault.
func (b *Buffer[K, V]) CreateCount() uint64 { return b.creates }

// Stats returns a snapshot of the counters.
func (b *Buffer[K, V]) Stats() Stats {
	return Stats{
		Puts:     b.puts,
		Matches:  b.matches,
		Misses:   b.misses,
		Removals: b.removals,
		Creates:  b.creates,
		Len:      b.list.len,
		Capacity: b.capacity,
	}
}

// Keys returns the resident keys, least recently used first.
func (b *Buffer[K, V]) Keys() []K {
	keys := make([]K, 0, b.list.len)
	for n := b.list.tail; n != nil; n = n.prev {
		keys = append(keys, n.key)
	}
	return keys
}

// Values returns the resident values, least recently used first.
func (b *Buffer[K, V]) Values() []V {
	vals := make([]V, 0, b.list.len)
	for n := b.list.tail; n != nil; n = n.prev {
		vals = append(vals, n.val)
	}
	return vals
}

// Entries returns the resident pairs, least recently used first.
func (b *Buffer[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, b.list.len)
	for n := b.list.tail; n != nil; n = n.prev {
		out = append(out, Entry[K, V]{Key: n.key, Value: n.val})
	}
	return out
}

// All iterates over a snapshot taken when All is called, least recently
// used first. Mutating the buffer while ranging is allowed and does not
// affect the sequence.
func (b *Buffer[K, V]) All() iter.Seq2[K, V] {
	snap := b.Entries()
	return func(yield func(K, V) bool) {
		for _, e := range snap {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// String renders the diagnostic summary, e.g.
// "Lrubuffer[ maxSize = 64, hits = 2, misses = 0, hitRate = 100% ]".
func (b *Buffer[K, V]) String() string {
	return fmt.Sprintf("Lrubuffer[ maxSize = %d, hits = %d, misses = %d, hitRate = %d%% ]",
		b.capacity, b.matches, b.misses, b.Stats().HitPercent())
}

// ---- internals ----

// insert links a new node at MRU and evicts the LRU entry on overflow.
func (b *Buffer[K, V]) insert(k K, v V) {
	n := &node[K, V]{key: k, val: v}
	b.m[k] = n
	b.list.pushFront(n)

	if b.list.len <= b.capacity {
		b.metrics.Size(b.list.len, b.capacity)
		return
	}
	tail := b.list.back()
	b.detach(tail)
	b.removals++
	b.metrics.Evict(EvictOverflow)
	b.metrics.Size(b.list.len, b.capacity)
	b.hooks.AfterRemoval(true, tail.key, tail.val, &v)
}

// detach removes n from both the list and the map.
func (b *Buffer[K, V]) detach(n *node[K, V]) {
	b.list.unlink(n)
	delete(b.m, n.key)
}

// Stats is a point-in-time copy of a Buffer's counters.
type Stats struct {
	Puts     uint64
	Matches  uint64
	Misses   uint64
	Removals uint64
	Creates  uint64
	Len      int
	Capacity int
}

// HitPercent is round(Matches / (Matches+Misses) * 100), or 0 before any lookup.
func (s Stats) HitPercent() int {
	total := s.Matches + s.Misses
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Matches) / float64(total) * 100))
}
