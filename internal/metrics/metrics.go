package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recs",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"method", "path"})

	SourceRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "source_requests_total",
		Help:      "Total requests to catalog sources by source name and result status.",
	}, []string{"source", "status"})

	SourceRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "recs",
		Name:      "source_request_duration_seconds",
		Help:      "Catalog source request duration in seconds.",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
	}, []string{"source"})

	SourceAvailable = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "recs",
		Name:      "source_available",
		Help:      "Whether a catalog source is available (1) or blocked by circuit breaker (0).",
	}, []string{"source"})

	FallbacksServedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "fallbacks_served_total",
		Help:      "Total times static fallback content substituted for a failed source.",
	}, []string{"source"})

	ItemsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "items_dropped_total",
		Help:      "Upstream records dropped during normalization by source name.",
	}, []string{"source"})

	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "cache_hits_total",
		Help:      "Total number of recommendation batch cache hits.",
	})

	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "recs",
		Name:      "cache_misses_total",
		Help:      "Total number of recommendation batch cache misses.",
	})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "recs",
		Name:      "active_sessions",
		Help:      "Number of live recommendation sessions held in memory.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		SourceRequestsTotal,
		SourceRequestDuration,
		SourceAvailable,
		FallbacksServedTotal,
		ItemsDroppedTotal,
		CacheHitsTotal,
		CacheMissesTotal,
		ActiveSessions,
	)
}
