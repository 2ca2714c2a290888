package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imbgen_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imbgen_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Encoding metrics
	encodeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imbgen_encode_requests_total",
			Help: "Total number of barcode encode requests",
		},
		[]string{"type", "status"}, // type: single, batch, websocket
	)

	encodeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "imbgen_encode_duration_seconds",
			Help:    "Barcode encoding duration in seconds",
			Buckets: []float64{.00001, .0001, .001, .01, .1, 1},
		},
		[]string{"type"},
	)

	batchRecords = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "imbgen_batch_records",
			Help:    "Number of records per batch encode request",
			Buckets: []float64{1, 10, 100, 1000, 10000},
		},
	)

	validationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imbgen_validation_failures_total",
			Help: "Total number of validation failures by error code",
		},
		[]string{"code"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imbgen_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "imbgen_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "imbgen_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)
