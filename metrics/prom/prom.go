// Package prom exports cache.Metrics signals as Prometheus collectors.
package prom

import (
	"github.com/IvanBrykalov/lrubuffer/cache"
	"github.com/prometheus/client_golang/prometheus"
)

// Adapter implements cache.Metrics and exports Prometheus counters/gauges.
// Safe for concurrent use; all Prometheus metric types are goroutine-safe.
type Adapter struct {
	hits     prometheus.Counter
	misses   prometheus.Counter
	puts     prometheus.Counter
	creates  prometheus.Counter
	evicts   *prometheus.CounterVec
	entries  prometheus.Gauge
	capacity prometheus.Gauge
}

// New constructs a Prometheus metrics adapter.
//   - reg:          registry to register metrics with (nil => prometheus.DefaultRegisterer)
//   - ns, sub:      Prometheus namespace and subsystem
//   - constLabels:  static labels applied to all metrics (may be nil)
func New(reg prometheus.Registerer, ns, sub string, constLabels prometheus.Labels) *Adapter {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   sub,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}

	a := &Adapter{
		hits:    counter("hits_total", "Lookups that found the key"),
		misses:  counter("misses_total", "Lookups that did not find the key"),
		puts:    counter("puts_total", "Put calls"),
		creates: counter("creates_total", "Values synthesized by CreateDefault"),
		evicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   sub,
				Name:        "evictions_total",
				Help:        "Capacity-driven evictions by reason",
				ConstLabels: constLabels,
			},
			[]string{"reason"},
		),
		entries:  gauge("size_entries", "Number of resident entries"),
		capacity: gauge("capacity_entries", "Configured entry limit"),
	}
	reg.MustRegister(a.hits, a.misses, a.puts, a.creates, a.evicts, a.entries, a.capacity)
	return a
}

func (a *Adapter) Hit()    { a.hits.Inc() }
func (a *Adapter) Miss()   { a.misses.Inc() }
func (a *Adapter) Put()    { a.puts.Inc() }
func (a *Adapter) Create() { a.creates.Inc() }

// Evict increments the eviction counter with a reason label.
func (a *Adapter) Evict(r cache.EvictReason) {
	a.evicts.WithLabelValues(r.String()).Inc()
}

// Size updates the entry and capacity gauges.
func (a *Adapter) Size(entries, capacity int) {
	a.entries.Set(float64(entries))
	a.capacity.Set(float64(capacity))
}

// Compile-time check: ensure Adapter implements cache.Metrics.
var _ cache.Metrics = (*Adapter)(nil)
