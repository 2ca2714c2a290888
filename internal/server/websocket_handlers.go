package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketEncodeRequest represents an encode request via WebSocket.
// A "batch" request streams per-record results with progress updates,
// which is the point of using the socket over the REST batch endpoint.
type WebSocketEncodeRequest struct {
	Type     string          `json:"type"` // "encode" or "encode_batch"
	Request  *EncodeRequest  `json:"request,omitempty"`
	Requests []EncodeRequest `json:"requests,omitempty"`
}

// WebSocketConnWriter is an interface for writing WebSocket messages.
type WebSocketConnWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// WebSocketEncodeResponse represents an encode response via WebSocket.
type WebSocketEncodeResponse struct {
	Type      string           `json:"type"`
	Status    string           `json:"status"` // "processing", "completed", "error"
	Progress  float64          `json:"progress,omitempty"`
	Index     int              `json:"index,omitempty"`
	Result    *EncodeResponse  `json:"result,omitempty"`
	Results   []EncodeResponse `json:"results,omitempty"`
	Error     string           `json:"error,omitempty"`
	ErrorType string           `json:"error_type,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}

// encodeWebSocketHandler handles WebSocket connections for streaming encoding.
func (s *Server) encodeWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	s.handleWebSocketConnection(conn)
}

// handleWebSocketConnection processes messages from a WebSocket connection.
func (s *Server) handleWebSocketConnection(conn *websocket.Conn) {
	// Read deadline prevents hanging connections
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Ping to keep the connection alive
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "error", err)
			}
			break
		}

		websocketMessagesTotal.WithLabelValues("received").Inc()

		if messageType == websocket.TextMessage {
			s.handleWebSocketMessage(conn, data)
		}
	}
}

// handleWebSocketMessage processes a WebSocket message.
func (s *Server) handleWebSocketMessage(conn *websocket.Conn, data []byte) {
	var req WebSocketEncodeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.sendWebSocketError(conn, "invalid_request", "Failed to parse request: "+err.Error())
		return
	}

	requestID := strconv.FormatInt(time.Now().UnixNano(), 10)

	switch req.Type {
	case "encode":
		s.processWebSocketEncode(conn, req, requestID)
	case "encode_batch":
		s.processWebSocketBatch(conn, req, requestID)
	default:
		s.sendWebSocketError(conn, "invalid_request", "Unsupported request type: "+req.Type)
	}
}

// processWebSocketEncode handles a single encode request over the socket.
func (s *Server) processWebSocketEncode(conn *websocket.Conn, req WebSocketEncodeRequest, requestID string) {
	if req.Request == nil {
		s.sendWebSocketError(conn, "invalid_request", "No encode request provided")
		return
	}

	resp, _ := s.encodeOne(*req.Request)
	status := "completed"
	if resp.Success {
		encodeRequestsTotal.WithLabelValues("websocket", "success").Inc()
	} else {
		encodeRequestsTotal.WithLabelValues("websocket", "error").Inc()
	}

	s.sendWebSocketResponse(conn, WebSocketEncodeResponse{
		Type:      "encode_response",
		Status:    status,
		Progress:  1.0,
		Result:    &resp,
		RequestID: requestID,
	})
}

// processWebSocketBatch streams per-record results with progress updates.
func (s *Server) processWebSocketBatch(conn *websocket.Conn, req WebSocketEncodeRequest, requestID string) {
	if len(req.Requests) == 0 {
		s.sendWebSocketError(conn, "invalid_request", "No encode requests provided")
		return
	}
	if len(req.Requests) > s.maxBatchSize {
		s.sendWebSocketError(conn, "invalid_request", "Batch too large")
		return
	}

	batchRecords.Observe(float64(len(req.Requests)))

	s.sendWebSocketResponse(conn, WebSocketEncodeResponse{
		Type:      "encode_response",
		Status:    "processing",
		Progress:  0.0,
		RequestID: requestID,
	})

	start := time.Now()
	results := make([]EncodeResponse, len(req.Requests))
	failed := 0
	for i, item := range req.Requests {
		resp, _ := s.encodeOne(item)
		results[i] = resp
		if !resp.Success {
			failed++
		}

		s.sendWebSocketResponse(conn, WebSocketEncodeResponse{
			Type:      "encode_progress",
			Status:    "processing",
			Progress:  float64(i+1) / float64(len(req.Requests)),
			Index:     i,
			Result:    &results[i],
			RequestID: requestID,
		})
	}
	encodeDuration.WithLabelValues("websocket").Observe(time.Since(start).Seconds())

	if failed == 0 {
		encodeRequestsTotal.WithLabelValues("websocket", "success").Inc()
	} else {
		encodeRequestsTotal.WithLabelValues("websocket", "partial").Inc()
	}

	s.sendWebSocketResponse(conn, WebSocketEncodeResponse{
		Type:      "encode_response",
		Status:    "completed",
		Progress:  1.0,
		Results:   results,
		RequestID: requestID,
	})
}

// sendWebSocketResponse sends a response message over WebSocket.
func (s *Server) sendWebSocketResponse(conn WebSocketConnWriter, response WebSocketEncodeResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		slog.Error("Failed to marshal WebSocket response", "error", err)
		return
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Error("Failed to send WebSocket message", "error", err)
		return
	}

	websocketMessagesTotal.WithLabelValues("sent").Inc()
}

// sendWebSocketError sends an error message over WebSocket.
func (s *Server) sendWebSocketError(conn WebSocketConnWriter, errorType, message string) {
	s.sendWebSocketResponse(conn, WebSocketEncodeResponse{
		Type:      "error",
		Status:    "error",
		Error:     message,
		ErrorType: errorType,
	})
}
