package cache

import (
	"context"
	"log/slog"
)

// DefaultCapacity is the entry limit used when Options.Capacity is zero.
const DefaultCapacity = 64

// EvictReason explains why an entry was dropped by the buffer itself.
type EvictReason int

const (
	// EvictOverflow: an insert pushed the buffer past its capacity.
	EvictOverflow EvictReason = iota
	// EvictResize: UpdateCapacity shrank the buffer below its current length.
	EvictResize
)

// String returns a stable label for the reason (used by metrics adapters).
func (r EvictReason) String() string {
	switch r {
	case EvictResize:
		return "resize"
	default:
		return "overflow"
	}
}

// Metrics exposes buffer-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Put()
	Create()
	Evict(reason EvictReason)
	Size(entries, capacity int)
}

// Options configures a Buffer. Zero values are safe;
// defaults are applied in New():
//   - Capacity == 0 => DefaultCapacity (negative values are rejected)
//   - nil Hooks     => NoopHooks
//   - nil Metrics   => NoopMetrics
//   - nil Logger    => records are discarded
type Options[K comparable, V any] struct {
	// Capacity is the maximum number of resident entries.
	Capacity int

	// Hooks supplies CreateDefault and AfterRemoval. Hooks run synchronously
	// after the triggering mutation has been committed.
	Hooks Hooks[K, V]

	// SilentRemove suppresses AfterRemoval(false, ...) for explicit Remove calls.
	SilentRemove bool

	// Loader fetches a value on miss. Used by Sync.GetOrLoad only.
	Loader func(ctx context.Context, k K) (V, error)

	Metrics Metrics
	Logger  *slog.Logger
}

// withDefaults returns a copy of opt with nil fields replaced.
func (opt Options[K, V]) withDefaults() Options[K, V] {
	if opt.Capacity == 0 {
		opt.Capacity = DefaultCapacity
	}
	if opt.Hooks == nil {
		opt.Hooks = NoopHooks[K, V]{}
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.New(slog.DiscardHandler)
	}
	return opt
}
