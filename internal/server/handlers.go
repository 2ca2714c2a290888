package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/postalworks/imbgen/internal/imb"
	"github.com/postalworks/imbgen/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	writeJSON(w, http.StatusOK, response)
}

// stidsHandler lists the configured service type identifiers.
func (s *Server) stidsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stids := s.encoder.ServiceTypes()
	writeJSON(w, http.StatusOK, STIDsResponse{
		ServiceTypes: stids,
		Count:        len(stids),
	})
}

// encodeHandler processes a single encode request.
func (s *Server) encodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req EncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, EncodeResponse{
			Success: false,
			Error:   "invalid JSON body: " + err.Error(),
		})
		return
	}

	start := time.Now()
	resp, status := s.encodeOne(req)
	encodeDuration.WithLabelValues("single").Observe(time.Since(start).Seconds())

	if resp.Success {
		encodeRequestsTotal.WithLabelValues("single", "success").Inc()
	} else {
		encodeRequestsTotal.WithLabelValues("single", "error").Inc()
	}
	writeJSON(w, status, resp)
}

// batchEncodeHandler processes a batch of encode requests. Individual
// record failures are reported inline; the call itself returns 200.
func (s *Server) batchEncodeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BatchEncodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, EncodeResponse{
			Success: false,
			Error:   "invalid JSON body: " + err.Error(),
		})
		return
	}
	if len(req.Requests) == 0 {
		writeJSON(w, http.StatusBadRequest, EncodeResponse{
			Success: false,
			Error:   "no requests provided",
		})
		return
	}
	if len(req.Requests) > s.maxBatchSize {
		writeJSON(w, http.StatusRequestEntityTooLarge, EncodeResponse{
			Success: false,
			Error:   "batch too large",
		})
		return
	}

	batchRecords.Observe(float64(len(req.Requests)))

	start := time.Now()
	response := BatchEncodeResponse{
		Results: make([]EncodeResponse, len(req.Requests)),
	}
	for i, item := range req.Requests {
		resp, _ := s.encodeOne(item)
		response.Results[i] = resp
		if resp.Success {
			response.Encoded++
		} else {
			response.Failed++
		}
	}
	encodeDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())

	if response.Failed == 0 {
		encodeRequestsTotal.WithLabelValues("batch", "success").Inc()
	} else {
		encodeRequestsTotal.WithLabelValues("batch", "partial").Inc()
	}
	writeJSON(w, http.StatusOK, response)
}

// encodeOne runs one encode request and maps errors onto the response
// shape and HTTP status. Every encode error is a 422: the encoder only
// fails on bad input, with field validation failures additionally
// carrying their error code and field name.
func (s *Server) encodeOne(req EncodeRequest) (EncodeResponse, int) {
	var (
		result *imb.Result
		err    error
	)
	if req.TrackingNumber != "" {
		result, err = imb.EncodeTrackingNumber(req.TrackingNumber, req.RoutingCode)
	} else {
		result, err = s.encoder.Encode(imb.Request{
			BarcodeID:   req.BarcodeID,
			ServiceType: req.ServiceType,
			MailerID:    req.MailerID,
			Sequence:    req.Sequence,
			RoutingCode: req.RoutingCode,
		})
	}
	if err == nil {
		return EncodeResponse{Success: true, Result: result}, http.StatusOK
	}

	var ve *imb.ValidationError
	if errors.As(err, &ve) {
		validationFailures.WithLabelValues(string(ve.Code)).Inc()
		return EncodeResponse{
			Success:   false,
			Error:     ve.Error(),
			ErrorCode: string(ve.Code),
			Field:     ve.Field,
		}, http.StatusUnprocessableEntity
	}

	return EncodeResponse{Success: false, Error: err.Error()}, http.StatusUnprocessableEntity
}

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
