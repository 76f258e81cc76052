package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/lrubuffer/cache"
)

func TestAdapter_TracksBufferActivity(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "lru", "test", prometheus.Labels{"app": "unit"})

	b, err := cache.New[string, int](cache.Options[string, int]{Capacity: 2, Metrics: m})
	require.NoError(t, err)

	b.Put("a", 1)
	b.Put("b", 2)
	b.Put("c", 3) // overflow evicts a
	b.Get("b")
	b.Get("a")
	b.Contains("c")
	require.NoError(t, b.UpdateCapacity(1)) // resize evicts b

	assert.Equal(t, 2.0, testutil.ToFloat64(m.hits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.puts))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.creates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("overflow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evicts.WithLabelValues("resize")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.capacity))

	n, err := testutil.GatherAndCount(reg, "lru_test_hits_total", "lru_test_evictions_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "one hits series plus two eviction reasons")
}

func TestAdapter_CountsCreates(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry(), "lru", "create", nil)
	b, err := cache.New[int, int](cache.Options[int, int]{
		Metrics: m,
		Hooks: cache.HookFuncs[int, int]{
			CreateDefaultFunc: func(k int) (int, bool) { return k * 2, true },
		},
	})
	require.NoError(t, err)

	v, ok := b.Get(21)
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.creates))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.misses))
}
