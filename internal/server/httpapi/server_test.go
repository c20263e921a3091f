package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/heimsight/heimsight/internal/monitor"
	"github.com/heimsight/heimsight/internal/retention"
	"github.com/heimsight/heimsight/internal/storage/memstore"
	"github.com/stretchr/testify/require"
)

func TestNew_HealthRouteIsReachable(t *testing.T) {
	store := memstore.New()
	ctrl := retention.New(store)
	mon := monitor.New(store.Logs(), store.Metrics(), store.Traces(), ctrl, time.Hour)

	srv := New(Config{Host: "127.0.0.1", Port: 0, MaxConcurrentIngest: 10, MaxConcurrentQuery: 10}, store, ctrl, mon)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestNew_IngestRouteReachesBackend(t *testing.T) {
	store := memstore.New()
	ctrl := retention.New(store)
	mon := monitor.New(store.Logs(), store.Metrics(), store.Traces(), ctrl, time.Hour)

	srv := New(Config{MaxConcurrentIngest: 10, MaxConcurrentQuery: 10}, store, ctrl, mon)

	body := `{"timestamp": 1, "level": "info", "message": "ok", "service": "svc"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/logs", strings.NewReader(body))
	rec := httptest.NewRecorder()

	srv.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
}

func TestNew_RetentionConfigRouteIsReachable(t *testing.T) {
	store := memstore.New()
	ctrl := retention.New(store)
	mon := monitor.New(store.Logs(), store.Metrics(), store.Traces(), ctrl, time.Hour)

	srv := New(Config{MaxConcurrentIngest: 10, MaxConcurrentQuery: 10}, store, ctrl, mon)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/config/retention", nil))

	require.Equal(t, http.StatusOK, rec.Code)
}
