package cache

import (
	"math/rand"
	"strconv"
	"sync/atomic"
	"testing"
)

// benchmarkBuffer exercises a read/write mix against a warm single-owner Buffer.
func benchmarkBuffer(b *testing.B, readsPct int) {
	buf, err := New[int, int](Options[int, int]{Capacity: 100_000})
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 50_000; i++ {
		buf.Put(i, 1)
	}

	r := rand.New(rand.NewSource(1))
	keyMask := (1 << 17) - 1 // keyspace larger than capacity to force evictions

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		k := i & keyMask
		if r.Intn(100) < readsPct {
			buf.Get(k)
		} else {
			buf.Put(k, i)
		}
	}
}

func BenchmarkBuffer_90r10w(b *testing.B) { benchmarkBuffer(b, 90) }
func BenchmarkBuffer_50r50w(b *testing.B) { benchmarkBuffer(b, 50) }

// benchmarkSync is the same workload through the mutex wrapper with
// parallel workers. String keys include strconv/concat costs.
func benchmarkSync(b *testing.B, readsPct int) {
	s, err := NewSync[string, string](Options[string, string]{Capacity: 100_000})
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < 50_000; i++ {
		s.Put("k:"+strconv.Itoa(i), "v")
	}

	b.ReportAllocs()
	b.ResetTimer()

	var seed int64 = 1
	keyMask := (1 << 16) - 1

	b.RunParallel(func(pb *testing.PB) {
		r := rand.New(rand.NewSource(atomic.AddInt64(&seed, 1)))
		i := 0
		for pb.Next() {
			k := "k:" + strconv.Itoa(i&keyMask)
			if r.Intn(100) < readsPct {
				s.Get(k)
			} else {
				s.Put(k, "v")
			}
			i++
		}
	})
}

func BenchmarkSync_90r10w(b *testing.B) { benchmarkSync(b, 90) }
func BenchmarkSync_50r50w(b *testing.B) { benchmarkSync(b, 50) }
