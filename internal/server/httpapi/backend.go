// Package httpapi builds the REST + OTLP/HTTP surface (spec.md §6),
// following the teacher's server package shape: a plain http.ServeMux,
// a fixed middleware chain, and one handler-constructor function per
// route. Both memstore.Store and duckstore.Storage satisfy Backend, so
// the handlers never know which one is wired in.
package httpapi

import (
	"context"

	"github.com/heimsight/heimsight/internal/storage"
)

// Backend is the subset of a storage implementation the HTTP layer
// needs: the three per-signal views plus a liveness check. Query
// pushdown is an optional capability, probed with a type assertion to
// storage.SQLStore rather than folded into this interface, since
// memstore never implements it.
type Backend interface {
	Logs() storage.LogStore
	Metrics() storage.MetricStore
	Traces() storage.TraceStore
	Health(ctx context.Context) error
}
