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

func TestHandlePostMetrics_AcceptsValidMetric(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"name": "requests_total", "metric_type": "counter", "value": 1, "service": "checkout"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handlePostMetrics(backend)(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandlePostMetrics_RejectsUnknownType(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"name": "requests_total", "metric_type": "bogus", "value": 1, "service": "checkout"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handlePostMetrics(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePostMetrics_RejectsMisalignedHistogramBuckets(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"name": "latency", "metric_type": "histogram", "bucket_bounds": [1,2], "bucket_counts": [1,2,3,4], "service": "checkout"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/metrics", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handlePostMetrics(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetMetrics_FiltersByNameAndType(t *testing.T) {
	backend := memstore.New()
	require.NoError(t, backend.Metrics().InsertMetrics(context.Background(), []*model.Metric{
		{Name: "requests_total", MetricType: model.MetricTypeCounter, Value: 1, Service: "checkout"},
		{Name: "latency", MetricType: model.MetricTypeGauge, Value: 5, Service: "checkout"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics?name=requests_total&type=counter", nil)
	rec := httptest.NewRecorder()

	handleGetMetrics(backend)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp["total"])
}

func TestHandleMetricsCollection_MethodNotAllowed(t *testing.T) {
	backend := memstore.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/metrics", nil)
	rec := httptest.NewRecorder()

	handleMetricsCollection(backend)(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
