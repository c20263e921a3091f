// Package storage defines the backend-agnostic contracts implemented by
// memstore (a plain in-process reference backend) and duckstore (the
// embedded-DuckDB columnar backend), per spec.md §4.2.
package storage

import (
	"context"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/query"
)

// LogStore persists and retrieves LogRecords. QueryLogs' second return
// value is the total number of records matching sel.Where, ignoring
// sel.Limit/sel.Offset entirely (spec.md §4.2) — callers paginating a
// large result set still see how many rows exist in total.
type LogStore interface {
	InsertLogs(ctx context.Context, records []*model.LogRecord) error
	QueryLogs(ctx context.Context, sel *query.Select) ([]*model.LogRecord, int, error)
	OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error)
	DeleteOlderThan(ctx context.Context, cutoffUnixNano int64) error
}

// MetricStore persists and retrieves Metrics. QueryMetrics' total count
// ignores sel.Limit/sel.Offset, same as LogStore.QueryLogs.
type MetricStore interface {
	InsertMetrics(ctx context.Context, metrics []*model.Metric) error
	QueryMetrics(ctx context.Context, sel *query.Select) ([]*model.Metric, int, error)
	OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error)
	DeleteOlderThan(ctx context.Context, cutoffUnixNano int64) error
}

// TraceStore persists and retrieves Spans, and assembles Traces from
// them. QuerySpans' total count ignores sel.Limit/sel.Offset, same as
// LogStore.QueryLogs.
type TraceStore interface {
	InsertSpans(ctx context.Context, spans []*model.Span) error
	QuerySpans(ctx context.Context, sel *query.Select) ([]*model.Span, int, error)
	GetTrace(ctx context.Context, traceID string) (*model.Trace, error)
	OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error)
	DeleteOlderThan(ctx context.Context, cutoffUnixNano int64) error
}

// SQLStore is implemented by backends that can execute a parsed query
// directly against their own storage engine instead of row-walking
// in Go (spec.md §4.3's pushdown mode). memstore does not implement
// this; duckstore does. QuerySQL's total count ignores sel.Limit/
// sel.Offset, same as LogStore.QueryLogs.
type SQLStore interface {
	QuerySQL(ctx context.Context, sel *query.Select) ([]map[string]any, int, error)
}
