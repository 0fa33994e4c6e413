package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "genedex"

// Search backend Prometheus metrics.
var (
	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"op", "status"}, // status: ok / rejected / unavailable / not_found / expired / error
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	ScrollBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scroll_batches_total",
			Help:      "Total scroll batches fetched",
		},
	)

	ScrollDocumentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scroll_documents_total",
			Help:      "Total documents produced by scroll iterators",
		},
	)

	BreakerStateChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_state_changes_total",
			Help:      "Circuit breaker transitions by target state",
		},
		[]string{"name", "to"},
	)

	LookupCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_cache_total",
			Help:      "Identifier lookup cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers search backend metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(ScrollBatchesTotal)
	prometheus.MustRegister(ScrollDocumentsTotal)
	prometheus.MustRegister(BreakerStateChangesTotal)
	prometheus.MustRegister(LookupCacheTotal)
	backendMetricsRegistered = true
}
