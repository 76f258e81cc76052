package cache

import (
	"context"
	"errors"
	"sync"

	"github.com/IvanBrykalov/lrubuffer/internal/singleflight"
)

// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
var ErrNoLoader = errors.New("cache: no Loader provided")

// Sync is a Buffer guarded by a single mutex. Each method holds the lock for
// the whole operation, including evictions and hook calls, so callers observe
// them as one atomic step.
//
// Hooks run under the lock and must not call back into the same Sync.
type Sync[K comparable, V any] struct {
	mu     sync.Mutex
	b      *Buffer[K, V]
	loader func(ctx context.Context, k K) (V, error)

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, V]
}

// NewSync constructs a Buffer from opt and wraps it.
func NewSync[K comparable, V any](opt Options[K, V]) (*Sync[K, V], error) {
	b, err := New(opt)
	if err != nil {
		return nil, err
	}
	return &Sync[K, V]{b: b, loader: opt.Loader}, nil
}

// Do runs fn with exclusive access to the underlying Buffer.
// fn must not retain b after it returns.
func (s *Sync[K, V]) Do(fn func(b *Buffer[K, V])) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.b)
}

// Put is Buffer.Put under the lock.
func (s *Sync[K, V]) Put(k K, v V) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Put(k, v)
}

// Get is Buffer.Get under the lock; CreateDefault runs while it is held.
func (s *Sync[K, V]) Get(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Get(k)
}

// Contains is Buffer.Contains under the lock.
func (s *Sync[K, V]) Contains(k K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Contains(k)
}

// Peek returns the value for k without touching recency or counters.
func (s *Sync[K, V]) Peek(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Peek(k)
}

// Remove is Buffer.Remove under the lock.
func (s *Sync[K, V]) Remove(k K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Remove(k)
}

// UpdateCapacity is Buffer.UpdateCapacity under the lock.
func (s *Sync[K, V]) UpdateCapacity(capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.UpdateCapacity(capacity)
}

// Capacity returns the current entry limit.
func (s *Sync[K, V]) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Capacity()
}

// Len returns the number of resident entries.
func (s *Sync[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Len()
}

// IsEmpty reports whether Len() == 0.
func (s *Sync[K, V]) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.IsEmpty()
}

// Clear drops every entry; counters are kept.
func (s *Sync[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.b.Clear()
}

// Keys returns a snapshot of the keys, least recently used first.
func (s *Sync[K, V]) Keys() []K {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Keys()
}

// Values returns a snapshot of the values, least recently used first.
func (s *Sync[K, V]) Values() []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Values()
}

// Entries returns a snapshot of the pairs, least recently used first.
func (s *Sync[K, V]) Entries() []Entry[K, V] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Entries()
}

// Stats returns a snapshot of the counters.
func (s *Sync[K, V]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Stats()
}

// String renders the Lrubuffer[...] summary.
func (s *Sync[K, V]) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// GetOrLoad returns the value for k; on miss it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight). The lock is
// not held while the loader runs. Loader errors are returned and nothing is
// stored.
func (s *Sync[K, V]) GetOrLoad(ctx context.Context, k K) (V, error) {
	// fast path
	if v, ok := s.Get(k); ok {
		return v, nil
	}
	if s.loader == nil {
		var zero V
		return zero, ErrNoLoader
	}

	return s.sf.Do(ctx, k, func() (V, error) {
		// double-check after flight join; Peek keeps the miss counted once
		if v, ok := s.Peek(k); ok {
			return v, nil
		}
		v, err := s.loader(ctx, k)
		if err == nil {
			s.Put(k, v)
		}
		return v, err
	})
}
