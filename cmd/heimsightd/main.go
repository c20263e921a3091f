package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/heimsight/heimsight/internal/aggregation"
	"github.com/heimsight/heimsight/internal/monitor"
	"github.com/heimsight/heimsight/internal/retention"
	"github.com/heimsight/heimsight/internal/server/grpcapi"
	"github.com/heimsight/heimsight/internal/server/httpapi"
	"github.com/heimsight/heimsight/internal/storage/duckstore"
	"github.com/heimsight/heimsight/internal/storage/memstore"
)

func main() {
	host := envOr("HEIMSIGHT_HOST", "0.0.0.0")
	port := envIntOr("HEIMSIGHT_PORT", 8080)
	grpcPort := envIntOr("HEIMSIGHT_GRPC_PORT", 4317)
	backendKind := envOr("HEIMSIGHT_BACKEND", "duckdb")
	dbPath := envOr("HEIMSIGHT_DB_PATH", "heimsight.duckdb")

	backend, closeBackend, janitor := mustBackend(backendKind, dbPath)
	log.Printf("heimsight: backend=%s", backendKind)

	ctrl := retention.New(backend.(retention.TableTTLSetter))
	mon := monitor.New(backend.Logs(), backend.Metrics(), backend.Traces(), ctrl, monitor.DefaultInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go mon.Run(ctx)
	if janitor != nil {
		go janitor.Run(ctx)
	}

	httpSrv := httpapi.New(httpapi.Config{
		Host:                host,
		Port:                port,
		MaxConcurrentIngest: envIntOr("HEIMSIGHT_MAX_INGEST", 64),
		MaxConcurrentQuery:  envIntOr("HEIMSIGHT_MAX_QUERY", 32),
	}, backend, ctrl, mon)

	grpcSrv := grpcapi.New(backend)
	grpcLis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, grpcPort))
	if err != nil {
		log.Fatalf("heimsight: failed to bind gRPC listener: %v", err)
	}

	errCh := make(chan error, 2)
	go func() {
		log.Printf("heimsight: HTTP/OTLP-HTTP listening on %s", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		log.Printf("heimsight: gRPC/OTLP-gRPC listening on %s", grpcLis.Addr())
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("heimsight: received %s, shutting down gracefully...", sig)
	case err := <-errCh:
		log.Printf("heimsight: transport error, shutting down: %v", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("heimsight: HTTP server forced to shutdown: %v", err)
	}
	grpcSrv.GracefulStop()

	if err := closeBackend(); err != nil {
		log.Printf("heimsight: error closing backend: %v", err)
	}

	log.Println("heimsight: exited")
}

// mustBackend selects and opens the configured storage backend. The
// duckdb backend additionally runs the aggregation janitor against its
// *sql.DB; the in-memory reference backend has no SQL engine to
// aggregate against, so janitor is nil in that case.
func mustBackend(kind, dbPath string) (httpapi.Backend, func() error, *aggregation.Janitor) {
	switch kind {
	case "memory":
		store := memstore.New()
		return store, func() error { return nil }, nil
	case "duckdb":
		store, err := duckstore.New(dbPath)
		if err != nil {
			log.Fatalf("heimsight: failed to open duckdb store at %s: %v", dbPath, err)
		}
		janitor := aggregation.NewJanitor(store.DB(), aggregation.DefaultInterval)
		return store, store.Close, janitor
	default:
		log.Fatalf("heimsight: unknown HEIMSIGHT_BACKEND %q (want duckdb or memory)", kind)
		return nil, nil, nil
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("heimsight: invalid %s=%q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}
