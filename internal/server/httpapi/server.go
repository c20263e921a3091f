package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/heimsight/heimsight/internal/monitor"
	"github.com/heimsight/heimsight/internal/retention"
)

// Version is reported on GET /health.
const Version = "0.1.0"

// Config holds HTTP server configuration, mirroring the teacher's
// server.Config fields plus the query-path semaphore spec.md §5 calls
// for alongside the ingest one.
type Config struct {
	Host                string
	Port                int
	MaxConcurrentIngest int
	MaxConcurrentQuery  int
}

// New builds the REST + OTLP/HTTP *http.Server, wiring every route
// spec.md §6 lists against the shared backend, retention controller
// and age monitor, behind the teacher's fixed middleware chain.
func New(cfg Config, backend Backend, ctrl *retention.Controller, mon *monitor.Monitor) *http.Server {
	mux := http.NewServeMux()

	ingestSem := NewSemaphore(cfg.MaxConcurrentIngest)
	querySem := NewSemaphore(cfg.MaxConcurrentQuery)

	mux.HandleFunc("/health", handleHealth(backend))

	mux.Handle("/api/v1/logs", ingestSem.Middleware(handleLogsCollection(backend)))
	mux.Handle("/api/v1/metrics", ingestSem.Middleware(handleMetricsCollection(backend)))
	mux.Handle("/api/v1/traces", ingestSem.Middleware(handleTracesCollection(backend)))
	mux.Handle("/api/v1/traces/", querySem.Middleware(handleGetTraceByID(backend)))
	mux.Handle("/api/v1/query", querySem.Middleware(handleQuery(backend)))

	mux.HandleFunc("/api/v1/config/retention", handleRetentionConfig(ctrl))
	mux.HandleFunc("/api/v1/config/retention/policy", handleRetentionPolicy(ctrl))
	mux.HandleFunc("/api/v1/config/retention/metrics", handleRetentionMetrics(mon))

	mux.Handle("/v1/logs", ingestSem.Middleware(handleOTLPLogs(backend)))
	mux.Handle("/v1/metrics", ingestSem.Middleware(handleOTLPMetrics(backend)))
	mux.Handle("/v1/traces", ingestSem.Middleware(handleOTLPTraces(backend)))

	// Middleware execution order (request path):
	// requestID -> logging -> recovery -> sizeLimit -> gzip -> handler
	handler := chain(mux,
		requestIDMiddleware,
		loggingMiddleware,
		recoveryMiddleware,
		sizeLimitMiddleware,
		gzipMiddleware,
	)

	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}
