package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sentMessage captures a message written to the mock connection.
type sentMessage struct {
	messageType int
	data        []byte
}

// mockWebSocketConn records messages instead of writing to a socket.
type mockWebSocketConn struct {
	sentMessages []sentMessage
	writeErr     error
}

func (m *mockWebSocketConn) WriteMessage(messageType int, data []byte) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.sentMessages = append(m.sentMessages, sentMessage{messageType: messageType, data: data})
	return nil
}

func (m *mockWebSocketConn) lastResponse(t *testing.T) WebSocketEncodeResponse {
	t.Helper()
	require.NotEmpty(t, m.sentMessages)
	var resp WebSocketEncodeResponse
	require.NoError(t, json.Unmarshal(m.sentMessages[len(m.sentMessages)-1].data, &resp))
	return resp
}

func TestSendWebSocketResponse(t *testing.T) {
	s := newTestServer(t)
	conn := &mockWebSocketConn{}

	s.sendWebSocketResponse(conn, WebSocketEncodeResponse{
		Type:      "encode_response",
		Status:    "completed",
		Progress:  1.0,
		RequestID: "req-1",
	})

	require.Len(t, conn.sentMessages, 1)
	assert.Equal(t, websocket.TextMessage, conn.sentMessages[0].messageType)

	resp := conn.lastResponse(t)
	assert.Equal(t, "encode_response", resp.Type)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "req-1", resp.RequestID)
}

func TestSendWebSocketError(t *testing.T) {
	s := newTestServer(t)
	conn := &mockWebSocketConn{}

	s.sendWebSocketError(conn, "invalid_request", "bad payload")

	resp := conn.lastResponse(t)
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "invalid_request", resp.ErrorType)
	assert.Equal(t, "bad payload", resp.Error)
}

func TestSendWebSocketResponse_WriteFailure(t *testing.T) {
	s := newTestServer(t)
	conn := &mockWebSocketConn{writeErr: assert.AnError}

	// Should not panic; the error is logged and dropped
	s.sendWebSocketResponse(conn, WebSocketEncodeResponse{Type: "encode_response"})
	assert.Empty(t, conn.sentMessages)
}

// dialWebSocket connects a test client to the encode socket.
func dialWebSocket(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.encodeWebSocketHandler))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/encode/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	t.Cleanup(func() { _ = conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readResponse(t *testing.T, conn *websocket.Conn) WebSocketEncodeResponse {
	t.Helper()
	var resp WebSocketEncodeResponse
	require.NoError(t, conn.ReadJSON(&resp))
	return resp
}

func TestWebSocket_SingleEncode(t *testing.T) {
	s := newTestServer(t)
	conn := dialWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketEncodeRequest{
		Type: "encode",
		Request: &EncodeRequest{
			BarcodeID:   "00",
			ServiceType: "040",
			MailerID:    "123456",
			Sequence:    1,
			RoutingCode: "900123456",
		},
	}))

	resp := readResponse(t, conn)
	assert.Equal(t, "encode_response", resp.Type)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.Result)
	assert.True(t, resp.Result.Success)
	assert.Equal(t,
		"TTFTFFAAFFADDFAATATDDFFDDDADAAFDAFADTADAFFTAFATTTDTAFDFDTDDTFTDAF",
		resp.Result.Result.Barcode)
}

func TestWebSocket_BatchStreamsProgress(t *testing.T) {
	s := newTestServer(t)
	conn := dialWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketEncodeRequest{
		Type: "encode_batch",
		Requests: []EncodeRequest{
			{BarcodeID: "00", ServiceType: "040", MailerID: "123456", Sequence: 1},
			{BarcodeID: "00", ServiceType: "999", MailerID: "123456", Sequence: 2},
		},
	}))

	// Initial processing message
	resp := readResponse(t, conn)
	assert.Equal(t, "encode_response", resp.Type)
	assert.Equal(t, "processing", resp.Status)

	// One progress message per record
	first := readResponse(t, conn)
	assert.Equal(t, "encode_progress", first.Type)
	assert.Equal(t, 0, first.Index)
	assert.InDelta(t, 0.5, first.Progress, 0.001)
	require.NotNil(t, first.Result)
	assert.True(t, first.Result.Success)

	second := readResponse(t, conn)
	assert.Equal(t, "encode_progress", second.Type)
	assert.Equal(t, 1, second.Index)
	require.NotNil(t, second.Result)
	assert.False(t, second.Result.Success)
	assert.Equal(t, "invalid_service_type", second.Result.ErrorCode)

	// Final message carries all results
	final := readResponse(t, conn)
	assert.Equal(t, "encode_response", final.Type)
	assert.Equal(t, "completed", final.Status)
	assert.InDelta(t, 1.0, final.Progress, 0.001)
	require.Len(t, final.Results, 2)
}

func TestWebSocket_UnsupportedType(t *testing.T) {
	s := newTestServer(t)
	conn := dialWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketEncodeRequest{Type: "decode"}))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Equal(t, "invalid_request", resp.ErrorType)
	assert.Contains(t, resp.Error, "decode")
}

func TestWebSocket_MissingRequest(t *testing.T) {
	s := newTestServer(t)
	conn := dialWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketEncodeRequest{Type: "encode"}))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Error, "No encode request")
}

func TestWebSocket_BatchTooLarge(t *testing.T) {
	s := NewServer(Config{MaxBatchSize: 1})
	conn := dialWebSocket(t, s)

	require.NoError(t, conn.WriteJSON(WebSocketEncodeRequest{
		Type: "encode_batch",
		Requests: []EncodeRequest{
			{BarcodeID: "00", ServiceType: "040", MailerID: "123456", Sequence: 1},
			{BarcodeID: "00", ServiceType: "040", MailerID: "123456", Sequence: 2},
		},
	}))

	resp := readResponse(t, conn)
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Error, "Batch too large")
}
