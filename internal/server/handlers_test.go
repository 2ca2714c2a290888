package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postalworks/imbgen/internal/imb"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(Config{
		CORSOrigin:   "*",
		TimeoutSec:   5,
		MaxBatchSize: 100,
	})
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealthHandler(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.healthHandler(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSTIDsHandler(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stids", nil)
	rec := httptest.NewRecorder()
	s.stidsHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp STIDsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 6, resp.Count)
	assert.Equal(t, "First-Class Mail", resp.ServiceTypes["040"])
}

func TestEncodeHandler_Success(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.encodeHandler, "/api/v1/encode", EncodeRequest{
		BarcodeID:   "00",
		ServiceType: "040",
		MailerID:    "123456",
		Sequence:    1,
		RoutingCode: "900123456",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	assert.Equal(t, "00040123456000000001", resp.Result.TrackingNumber)
	assert.Equal(t,
		"TTFTFFAAFFADDFAATATDDFFDDDADAAFDAFADTADAFFTAFATTTDTAFDFDTDDTFTDAF",
		resp.Result.Barcode)
}

func TestEncodeHandler_TrackingNumberPassthrough(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.encodeHandler, "/api/v1/encode", EncodeRequest{
		TrackingNumber: "01234567094987654321",
		RoutingCode:    "01234567891",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	assert.Equal(t,
		"AADTFFDFTDADTAADAATFDTDDAAADDTDTTDAFADADDDTFFFDDTTTADFAAADFTDAADA",
		resp.Result.Barcode)
}

func TestEncodeHandler_MalformedTrackingNumber(t *testing.T) {
	// Non-validation encoder errors are still client input errors and map
	// to 422, without an error code or field.
	s := newTestServer(t)
	rec := postJSON(t, s.encodeHandler, "/api/v1/encode", EncodeRequest{
		TrackingNumber: "12345",
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp EncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.ErrorCode)
	assert.Contains(t, resp.Error, "20 decimal digits")
}

func TestEncodeHandler_ValidationFailure(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.encodeHandler, "/api/v1/encode", EncodeRequest{
		BarcodeID:   "00",
		ServiceType: "999",
		MailerID:    "123456",
		Sequence:    1,
	})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp EncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, string(imb.ErrInvalidServiceType), resp.ErrorCode)
	assert.Equal(t, "service_type", resp.Field)
}

func TestEncodeHandler_BadJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/encode", bytes.NewReader([]byte("{")))
	rec := httptest.NewRecorder()
	s.encodeHandler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchEncodeHandler_PartialFailures(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.batchEncodeHandler, "/api/v1/encode/batch", BatchEncodeRequest{
		Requests: []EncodeRequest{
			{BarcodeID: "00", ServiceType: "040", MailerID: "123456", Sequence: 1},
			{BarcodeID: "00", ServiceType: "999", MailerID: "123456", Sequence: 2},
			{BarcodeID: "00", ServiceType: "040", MailerID: "123456", Sequence: 3},
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp BatchEncodeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 3)
	assert.Equal(t, 2, resp.Encoded)
	assert.Equal(t, 1, resp.Failed)
	assert.True(t, resp.Results[0].Success)
	assert.False(t, resp.Results[1].Success)
	assert.Equal(t, string(imb.ErrInvalidServiceType), resp.Results[1].ErrorCode)
	assert.True(t, resp.Results[2].Success)
}

func TestBatchEncodeHandler_Empty(t *testing.T) {
	s := newTestServer(t)
	rec := postJSON(t, s.batchEncodeHandler, "/api/v1/encode/batch", BatchEncodeRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchEncodeHandler_TooLarge(t *testing.T) {
	s := NewServer(Config{MaxBatchSize: 2})
	var reqs []EncodeRequest
	for i := range 3 {
		reqs = append(reqs, EncodeRequest{
			BarcodeID: "00", ServiceType: "040", MailerID: "123456", Sequence: int64(i + 1),
		})
	}
	rec := postJSON(t, s.batchEncodeHandler, "/api/v1/encode/batch", BatchEncodeRequest{Requests: reqs})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestRoutes_EndToEnd(t *testing.T) {
	s := newTestServer(t)
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	resp, err := http.Get(fmt.Sprintf("%s/healthz", ts.URL))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	metrics, err := http.Get(fmt.Sprintf("%s/metrics", ts.URL))
	require.NoError(t, err)
	defer func() { _ = metrics.Body.Close() }()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestEncodeHandler_CustomServiceTypes(t *testing.T) {
	s := NewServer(Config{
		MaxBatchSize: 10,
		Encoder: imb.Options{
			ServiceTypes: map[string]string{"961": "Test Mail"},
		},
	})
	rec := postJSON(t, s.encodeHandler, "/api/v1/encode", EncodeRequest{
		BarcodeID: "00", ServiceType: "961", MailerID: "123456", Sequence: 1,
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}
