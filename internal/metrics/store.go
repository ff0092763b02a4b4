package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vector store call metrics.
var (
	StoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecgate",
			Name:      "store_requests_total",
			Help:      "Total number of vector store calls",
		},
		[]string{"op", "status"}, // op: "query" / "fetch", status: "ok" / "error"
	)

	StoreRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vecgate",
			Name:      "store_request_duration_seconds",
			Help:      "Vector store call duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"op"},
	)

	StoreMatchesReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vecgate",
			Name:      "store_matches_returned",
			Help:      "Number of records returned per store call",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50},
		},
		[]string{"op"},
	)
)

var storeMetricsRegistered bool

// RegisterStoreMetrics registers Prometheus store metrics. Must be called once from main.
func RegisterStoreMetrics() {
	if storeMetricsRegistered {
		return
	}
	prometheus.MustRegister(StoreRequestsTotal)
	prometheus.MustRegister(StoreRequestDuration)
	prometheus.MustRegister(StoreMatchesReturned)
	storeMetricsRegistered = true
}
