package duckstore

import (
	"context"
	"fmt"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/query"
	"github.com/heimsight/heimsight/internal/storage"
)

// Logs, Metrics and Traces return thin per-signal views of Storage.
// Logs/metrics/spans all have an OldestNewestCount/DeleteOlderThan
// operation but over different tables, so Storage keeps those
// unexported (logsAge, metricsAge, ...) and these adapters bind them to
// the exported names storage.LogStore/MetricStore/TraceStore require —
// the same shape used by internal/storage/memstore.
func (s *Storage) Logs() storage.LogStore       { return LogAdapter{s} }
func (s *Storage) Metrics() storage.MetricStore { return MetricAdapter{s} }
func (s *Storage) Traces() storage.TraceStore   { return TraceAdapter{s} }

type LogAdapter struct{ s *Storage }

func (a LogAdapter) InsertLogs(ctx context.Context, records []*model.LogRecord) error {
	return a.s.InsertLogs(ctx, records)
}
func (a LogAdapter) QueryLogs(ctx context.Context, sel *query.Select) ([]*model.LogRecord, int, error) {
	return a.s.QueryLogs(ctx, sel)
}
func (a LogAdapter) OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error) {
	return a.s.logsAge(ctx)
}
func (a LogAdapter) DeleteOlderThan(ctx context.Context, cutoff int64) error {
	return a.s.logsDeleteOlderThan(ctx, cutoff)
}

type MetricAdapter struct{ s *Storage }

func (a MetricAdapter) InsertMetrics(ctx context.Context, metrics []*model.Metric) error {
	return a.s.InsertMetrics(ctx, metrics)
}
func (a MetricAdapter) QueryMetrics(ctx context.Context, sel *query.Select) ([]*model.Metric, int, error) {
	return a.s.QueryMetrics(ctx, sel)
}
func (a MetricAdapter) OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error) {
	return a.s.metricsAge(ctx)
}
func (a MetricAdapter) DeleteOlderThan(ctx context.Context, cutoff int64) error {
	return a.s.metricsDeleteOlderThan(ctx, cutoff)
}

type TraceAdapter struct{ s *Storage }

func (a TraceAdapter) InsertSpans(ctx context.Context, spans []*model.Span) error {
	return a.s.InsertSpans(ctx, spans)
}
func (a TraceAdapter) QuerySpans(ctx context.Context, sel *query.Select) ([]*model.Span, int, error) {
	return a.s.QuerySpans(ctx, sel)
}
func (a TraceAdapter) GetTrace(ctx context.Context, traceID string) (*model.Trace, error) {
	return a.s.GetTrace(ctx, traceID)
}
func (a TraceAdapter) OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error) {
	return a.s.spansAge(ctx)
}
func (a TraceAdapter) DeleteOlderThan(ctx context.Context, cutoff int64) error {
	return a.s.spansDeleteOlderThan(ctx, cutoff)
}

// QuerySQL implements storage.SQLStore: it renders sel to SQL exactly
// like QueryLogs/QueryMetrics/QuerySpans, but returns generic rows for
// tables that have no dedicated model type (the aggregate tiers).
func (s *Storage) QuerySQL(ctx context.Context, sel *query.Select) ([]map[string]any, int, error) {
	total, err := s.countMatching(ctx, sel)
	if err != nil {
		return nil, 0, err
	}

	sqlText, args, err := query.RenderSQL(sel)
	if err != nil {
		return nil, 0, err
	}
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, 0, NewInfrastructureError("query sql", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, 0, NewInfrastructureError("read columns", err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, 0, NewInfrastructureError("scan sql row", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, NewInfrastructureError(fmt.Sprintf("iterate rows for %s", sel.From), err)
	}
	return out, total, nil
}
