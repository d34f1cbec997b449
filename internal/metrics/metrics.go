// Package metrics provides Prometheus metrics for the price truth engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SourceObservationsTotal counts observations per source and outcome.
	SourceObservationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_observations_total",
			Help: "Total number of price observations collected from sources",
		},
		[]string{"source", "outcome"},
	)

	// SourceFetchDuration is a histogram of per-source fetch latency.
	SourceFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Duration of individual source fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// VerdictsTotal counts resolved verdicts by status.
	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdicts_total",
			Help: "Total number of consensus verdicts resolved",
		},
		[]string{"status"},
	)

	// ResolveDuration is a histogram of full collect-and-resolve passes.
	ResolveDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolve_duration_seconds",
			Help:    "Duration of a full fan-out and consensus resolution",
			Buckets: prometheus.DefBuckets,
		},
	)

	// CacheEventsTotal counts verdict cache activity by event kind.
	CacheEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdict_cache_events_total",
			Help: "Total number of verdict cache events (hit_fresh, hit_stale, miss, forced, coalesced)",
		},
		[]string{"event"},
	)

	// HTTPRequestsTotal counts HTTP requests by endpoint and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"endpoint"},
	)
)

// Init registers all metrics with the default Prometheus registry. Call it
// once at process start.
func Init() {
	prometheus.MustRegister(
		SourceObservationsTotal,
		SourceFetchDuration,
		VerdictsTotal,
		ResolveDuration,
		CacheEventsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// RecordObservation records one source fetch and its outcome.
func RecordObservation(source, outcome string, duration time.Duration) {
	SourceObservationsTotal.WithLabelValues(source, outcome).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordVerdict records a resolved verdict.
func RecordVerdict(status string, duration time.Duration) {
	VerdictsTotal.WithLabelValues(status).Inc()
	ResolveDuration.Observe(duration.Seconds())
}

// RecordCacheEvent records verdict cache activity.
func RecordCacheEvent(event string) {
	CacheEventsTotal.WithLabelValues(event).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}
