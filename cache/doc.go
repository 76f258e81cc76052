// Package cache provides Buffer, a generic bounded least-recently-used
// key/value buffer with per-instance statistics and two extension points
// (CreateDefault and AfterRemoval).
//
// Design
//
//   - Storage: a map[K]*node for lookups plus an intrusive MRU↔LRU doubly
//     linked list for recency. Put, Get, Contains and Remove are O(1).
//
//   - Recency: Put (insert or overwrite), a Get hit and a Contains hit move
//     the key to the most recently used end. Peek does not.
//
//   - Capacity: DefaultCapacity (64) unless configured. Inserting past the
//     limit evicts the least recently used entry; UpdateCapacity evicts as
//     many as needed when shrinking. Capacity <= 0 fails with
//     ErrInvalidCapacity.
//
//   - Counters: PutCount, MatchCount, MissCount, RemovalCount and
//     CreateCount. RemovalCount only counts capacity-driven evictions.
//     Clear keeps all counters.
//
//   - Hooks: Options.Hooks receives CreateDefault on a Get miss and
//     AfterRemoval whenever a value leaves the buffer (isEvict=true for
//     capacity evictions, false for Remove and overwrites). Hooks run after
//     the mutation is committed.
//
//   - Iteration: Keys, Values, Entries and All are snapshots ordered from
//     least to most recently used.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Put/Create/Evict/Size
//     signals. NoopMetrics is the default; see package metrics/prom.
//
// Basic usage
//
//	b, err := cache.New[string, int](cache.Options[string, int]{Capacity: 2})
//	if err != nil {
//	    return err
//	}
//	b.Put("a", 1)
//	b.Put("b", 2)
//	b.Get("a")    // promotes a
//	b.Put("c", 3) // evicts b
//	fmt.Println(b.Keys()) // [a c]
//	fmt.Println(b)        // Lrubuffer[ maxSize = 2, hits = 1, misses = 0, hitRate = 100% ]
//
// With hooks
//
//	b, _ := cache.New[string, string](cache.Options[string, string]{
//	    Hooks: cache.HookFuncs[string, string]{
//	        CreateDefaultFunc: func(k string) (string, bool) { return "v:" + k, true },
//	        AfterRemovalFunc: func(isEvict bool, k, v string, newValue *string) {
//	            if isEvict {
//	                log.Printf("evicted %s", k)
//	            }
//	        },
//	    },
//	})
//
// Thread-safety
//
// Buffer has no internal locking. Sync wraps a Buffer with one mutex and
// adds GetOrLoad, which coalesces concurrent loads of the same key.
package cache
