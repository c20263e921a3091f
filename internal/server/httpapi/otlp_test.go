package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	collectorlogsv1 "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	logsv1 "go.opentelemetry.io/proto/otlp/logs/v1"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/heimsight/heimsight/internal/storage/memstore"
	"github.com/stretchr/testify/require"
)

func TestHandleOTLPLogs_AcceptsJSON(t *testing.T) {
	backend := memstore.New()
	req := &collectorlogsv1.ExportLogsServiceRequest{
		ResourceLogs: []*logsv1.ResourceLogs{
			{ScopeLogs: []*logsv1.ScopeLogs{{LogRecords: []*logsv1.LogRecord{
				{TimeUnixNano: 1, Body: &commonv1.AnyValue{Value: &commonv1.AnyValue_StringValue{StringValue: "ok"}}},
			}}}},
		},
	}
	body, err := protojson.Marshal(req)
	require.NoError(t, err)

	httpReq := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader(body))
	httpReq.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handleOTLPLogs(backend)(rec, httpReq)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestHandleOTLPLogs_RejectsUnsupportedContentType(t *testing.T) {
	backend := memstore.New()
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader([]byte("x")))
	httpReq.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()

	handleOTLPLogs(backend)(rec, httpReq)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestHandleOTLPLogs_MalformedBodyIsBadRequest(t *testing.T) {
	backend := memstore.New()
	httpReq := httptest.NewRequest(http.MethodPost, "/v1/logs", bytes.NewReader([]byte{0xff, 0xff}))
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	rec := httptest.NewRecorder()

	handleOTLPLogs(backend)(rec, httpReq)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOTLPLogs_MethodNotAllowed(t *testing.T) {
	backend := memstore.New()
	httpReq := httptest.NewRequest(http.MethodGet, "/v1/logs", nil)
	rec := httptest.NewRecorder()

	handleOTLPLogs(backend)(rec, httpReq)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
