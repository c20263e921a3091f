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

func TestHandleQuery_RunsNativeQueryAgainstMemstore(t *testing.T) {
	backend := memstore.New()
	require.NoError(t, backend.Logs().InsertLogs(context.Background(), []*model.LogRecord{
		{Timestamp: 1, Level: model.LogLevelError, Message: "boom", Service: "checkout"},
		{Timestamp: 2, Level: model.LogLevelInfo, Message: "ok", Service: "billing"},
	}))

	body := []byte(`{"query": "SELECT * FROM logs WHERE level = 'error'"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handleQuery(backend)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.EqualValues(t, 1, resp["row_count"])
	require.EqualValues(t, 1, resp["total_matched"])
	require.NotEmpty(t, resp["ast"])
}

func TestHandleQuery_UnknownTableIsBadRequest(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"query": "SELECT * FROM nope"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handleQuery(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_ParseErrorIsBadRequest(t *testing.T) {
	backend := memstore.New()
	body := []byte(`{"query": "SELEKT * FROM logs"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handleQuery(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_MalformedJSONBody(t *testing.T) {
	backend := memstore.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/query", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	handleQuery(backend)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_MethodNotAllowed(t *testing.T) {
	backend := memstore.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()

	handleQuery(backend)(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
