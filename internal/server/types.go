// Package server exposes the barcode encoder as an HTTP and WebSocket API.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/postalworks/imbgen/internal/imb"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	encoder      *imb.Encoder
	corsOrigin   string
	timeoutSec   int
	maxBatchSize int
	rateLimiter  *RateLimiter
}

// Config holds server configuration.
type Config struct {
	Host            string
	Port            int
	CORSOrigin      string
	TimeoutSec      int
	ShutdownTimeout int

	// RateLimitPerMin limits requests per client per minute; 0 disables.
	RateLimitPerMin int

	// MaxBatchSize caps the number of records in one batch request.
	MaxBatchSize int

	// Encoder configures the barcode encoder used by all endpoints.
	Encoder imb.Options
}

// EncodeRequest is the JSON body of a single encode call. Either the five
// logical fields or a pre-assembled TrackingNumber may be supplied.
type EncodeRequest struct {
	BarcodeID      string `json:"barcode_id,omitempty"`
	ServiceType    string `json:"service_type,omitempty"`
	MailerID       string `json:"mailer_id,omitempty"`
	Sequence       int64  `json:"sequence,omitempty"`
	RoutingCode    string `json:"routing_code,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// EncodeResponse is the JSON response for a single encode call.
type EncodeResponse struct {
	Success   bool        `json:"success"`
	Result    *imb.Result `json:"result,omitempty"`
	Error     string      `json:"error,omitempty"`
	ErrorCode string      `json:"error_code,omitempty"`
	Field     string      `json:"field,omitempty"`
}

// BatchEncodeRequest is the JSON body of a batch encode call.
type BatchEncodeRequest struct {
	Requests []EncodeRequest `json:"requests"`
}

// BatchEncodeResponse carries per-record outcomes; a batch call succeeds
// at the HTTP level even when individual records fail validation.
type BatchEncodeResponse struct {
	Results []EncodeResponse `json:"results"`
	Encoded int              `json:"encoded"`
	Failed  int              `json:"failed"`
}

// HealthResponse reports service health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// STIDsResponse lists the configured service type identifiers.
type STIDsResponse struct {
	ServiceTypes map[string]string `json:"service_types"`
	Count        int               `json:"count"`
}

// NewServer creates a new encoder server instance.
func NewServer(config Config) *Server {
	var limiter *RateLimiter
	if config.RateLimitPerMin > 0 {
		limiter = NewRateLimiter(config.RateLimitPerMin, 0, 0)
	}

	maxBatch := config.MaxBatchSize
	if maxBatch <= 0 {
		maxBatch = 10000
	}

	return &Server{
		encoder:      imb.New(config.Encoder),
		corsOrigin:   config.CORSOrigin,
		timeoutSec:   config.TimeoutSec,
		maxBatchSize: maxBatch,
		rateLimiter:  limiter,
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/api/v1/stids", s.corsMiddleware(s.stidsHandler))
	mux.HandleFunc("/api/v1/encode", s.corsMiddleware(s.rateLimitMiddleware(s.encodeHandler)))
	mux.HandleFunc("/api/v1/encode/batch", s.corsMiddleware(s.rateLimitMiddleware(s.batchEncodeHandler)))
	mux.HandleFunc("/api/v1/encode/ws", s.encodeWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
