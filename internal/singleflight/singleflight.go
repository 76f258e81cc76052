// Package singleflight coalesces concurrent loads of the same key.
package singleflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Group runs fn at most once per key among overlapping callers. Callers that
// arrive while a load is in flight wait for and share its result.
//
// Cancelling a follower's ctx unblocks only that follower; the leader's fn
// keeps running. Thread ctx into fn if the work itself must stop.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

var errGoexit = errors.New("singleflight: load called runtime.Goexit")

type call[V any] struct {
	done chan struct{} // closed once val/err are published
	val  V
	err  error
	dups int // followers that joined this call
}

// Do runs fn once for key and returns its result to every overlapping caller.
// A panic in fn is converted into an error for the followers and re-raised in
// the leader.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}

	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(c, key, fn)
	return c.val, c.err
}

func (g *Group[K, V]) run(c *call[V], key K, fn func() (V, error)) {
	normalReturn := false
	defer func() {
		if normalReturn {
			g.finish(c, key)
			return
		}
		r := recover()
		if r == nil {
			// runtime.Goexit in fn
			c.err = errGoexit
			g.finish(c, key)
			return
		}
		c.err = fmt.Errorf("singleflight: load panicked: %v", r)
		g.finish(c, key)
		panic(r)
	}()
	c.val, c.err = fn()
	normalReturn = true
}

// finish publishes the result and drops the in-flight marker.
func (g *Group[K, V]) finish(c *call[V], key K) {
	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()
	close(c.done)
}
