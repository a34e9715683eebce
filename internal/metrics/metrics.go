package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors updated by the season pipeline.
type Metrics struct {
	CacheLookups  *prometheus.CounterVec
	FetchFailures *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motogp",
			Name:      "cache_lookups_total",
			Help:      "Season cache lookups by data kind and result (hit or miss).",
		}, []string{"kind", "result"}),
		FetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "motogp",
			Name:      "fetch_failures_total",
			Help:      "Failed fetches from upstream sources by data kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.CacheLookups, m.FetchFailures)
	return m
}

// Noop returns collectors registered on a throwaway registry.
func Noop() *Metrics {
	return New(prometheus.NewRegistry())
}
