package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics exported for one cache.
type Metrics struct {
	Events   *prometheus.CounterVec
	Size     prometheus.GaugeFunc
	Capacity prometheus.GaugeFunc
	HitRate  prometheus.GaugeFunc
}

// NewMetrics creates metrics for c, registers them with reg and subscribes
// to c's events. Event counts start at registration time.
//
// name is attached as the "cache" const label so several caches can share
// one registry.
func NewMetrics[V any](reg prometheus.Registerer, name string, c *Cache[V]) *Metrics {
	labels := prometheus.Labels{"cache": name}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "smartcache_events_total",
		Help:        "Total cache events by kind",
		ConstLabels: labels,
	}, []string{"event"})

	size := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "smartcache_entries",
		Help:        "Number of entries currently stored",
		ConstLabels: labels,
	}, func() float64 { return float64(c.Stats().Size) })

	capacity := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "smartcache_capacity",
		Help:        "Maximum number of entries",
		ConstLabels: labels,
	}, func() float64 { return float64(c.Stats().Capacity) })

	hitRate := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name:        "smartcache_hit_rate",
		Help:        "Hits divided by lookups since creation",
		ConstLabels: labels,
	}, func() float64 { return c.Stats().HitRate })

	reg.MustRegister(events, size, capacity, hitRate)

	c.AddEventListener(func(ev Event[V]) {
		events.WithLabelValues(ev.Kind.String()).Inc()
	})

	return &Metrics{
		Events:   events,
		Size:     size,
		Capacity: capacity,
		HitRate:  hitRate,
	}
}
