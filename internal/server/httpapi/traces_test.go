package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/storage/memstore"
	"github.com/stretchr/testify/require"
)

func TestHandlePostSpans_AcceptsValidSpan(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"trace_id": "t1", "span_id": "s1", "start_time": 1, "end_time": 10, "service": "checkout", "operation": "charge"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/traces", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handlePostSpans(backend)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandlePostSpans_RejectsEndBeforeStart(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"trace_id": "t1", "span_id": "s1", "start_time": 10, "end_time": 1, "service": "checkout"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/traces", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handlePostSpans(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetTraces_GroupsSpansByTraceID(t *testing.T) {
	backend := memstore.New()
	require.NoError(t, backend.Traces().InsertSpans(context.Background(), []*model.Span{
		{TraceID: "t1", SpanID: "root", StartTime: 1, EndTime: 10, Service: "checkout"},
		{TraceID: "t1", SpanID: "child", ParentSpanID: "root", StartTime: 2, EndTime: 5, Service: "checkout"},
		{TraceID: "t2", SpanID: "other", StartTime: 1, EndTime: 2, Service: "billing"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/traces?service=checkout", nil)
	rec := httptest.NewRecorder()

	handleGetTraces(backend)(rec, req)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp["total"])
}

func TestHandleGetTraceByID_Found(t *testing.T) {
	backend := memstore.New()
	require.NoError(t, backend.Traces().InsertSpans(context.Background(), []*model.Span{
		{TraceID: "t1", SpanID: "root", StartTime: 1, EndTime: 10, Service: "checkout"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/traces/t1", nil)
	rec := httptest.NewRecorder()

	handleGetTraceByID(backend)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var trace model.Trace
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &trace))
	require.Equal(t, "t1", trace.TraceID)
}

func TestHandleGetTraceByID_NotFound(t *testing.T) {
	backend := memstore.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/traces/missing", nil)
	rec := httptest.NewRecorder()

	handleGetTraceByID(backend)(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleGetTraceByID_EmptyIDIsBadRequest(t *testing.T) {
	backend := memstore.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/traces/", nil)
	rec := httptest.NewRecorder()

	handleGetTraceByID(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}
