// Package metrics exposes fetch counters for the data layers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tokenview"

// Fetch kinds.
const (
	KindIdentity = "identity"
	KindRemote   = "remote"
)

type Metrics struct {
	fetches       *prometheus.CounterVec
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	subscribers   prometheus.Gauge
	favoriteFlips prometheus.Counter
}

// NewMetrics registers the collectors on reg. A nil reg leaves them
// unregistered, which keeps tests independent of the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Identity and remote detail fetches started.",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Identity and remote detail fetches that returned an error.",
		}, []string{"kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Fetch latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscribers",
			Help:      "Active watcher subscribers.",
		}),
		favoriteFlips: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.fetches, m.failures, m.duration, m.subscribers, m.favoriteFlips)
	}
	return m
}

// ObserveFetch records one finished fetch of kind.
func (m *Metrics) ObserveFetch(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(kind).Inc()
	m.duration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
	if err != nil {
		m.failures.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SetSubscribers(n int) {
	if m == nil {
		return
	}
	m.subscribers.Set(float64(n))
}

func (m *Metrics) FavoriteToggled() {
	if m == nil {
		return
	}
	m.favoriteFlips.Inc()
}
