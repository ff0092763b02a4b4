package metrics

import "github.com/prometheus/client_golang/prometheus"

// Streaming adapter metrics.
var (
	StreamSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vecgate",
			Name:      "stream_sessions_active",
			Help:      "Currently open event-stream sessions",
		},
	)

	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vecgate",
			Name:      "stream_events_total",
			Help:      "Frames written to event streams",
		},
		[]string{"event"}, // "endpoint" / "heartbeat" / "message"
	)
)

var streamMetricsRegistered bool

// RegisterStreamMetrics registers Prometheus streaming metrics. Must be called once from main.
func RegisterStreamMetrics() {
	if streamMetricsRegistered {
		return
	}
	prometheus.MustRegister(StreamSessionsActive)
	prometheus.MustRegister(StreamEventsTotal)
	streamMetricsRegistered = true
}
