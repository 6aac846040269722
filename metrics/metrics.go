// Package metrics exposes Prometheus instrumentation for dataset loading,
// overlay selection, the frame loop and the websocket stream.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Selection Metrics
	Selections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "globe_selections_total",
			Help: "Dynasty selections by outcome",
		},
		[]string{"outcome"}, // "applied", "superseded", "unknown", "failed"
	)

	ActivePatches = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "globe_active_patches",
			Help: "Number of patches in the attached territory group",
		},
	)

	BuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "globe_build_duration_seconds",
			Help:    "Time spent building territory meshes",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Dataset Metrics
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dataset_fetch_duration_seconds",
			Help:    "Duration of dataset fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "result"},
	)

	// Frame Metrics
	Ticks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "globe_ticks_total",
			Help: "Total number of animation ticks",
		},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_rate_limited_total",
			Help: "Client messages dropped by the per-client rate limiter",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordSelection counts one finished selection.
func RecordSelection(outcome string) {
	Selections.WithLabelValues(outcome).Inc()
}

// RecordFetch records a dataset fetch metric
func RecordFetch(source string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	FetchDuration.WithLabelValues(source, result).Observe(duration.Seconds())
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
