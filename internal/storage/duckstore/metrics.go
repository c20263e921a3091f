package duckstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/query"
)

// InsertMetrics appends metrics via the Appender API, generalizing the
// teacher's StoreMetrics from a fixed OTLP data-point union type to
// model.Metric's scalar-value-plus-optional-histogram-buckets shape.
func (s *Storage) InsertMetrics(ctx context.Context, metrics []*model.Metric) error {
	if len(metrics) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return NewInfrastructureError("failed to get connection", err)
	}
	defer conn.Close()

	var appender *duckdb.Appender
	err = conn.Raw(func(driverConn any) error {
		duckConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("unexpected connection type: %T", driverConn)
		}
		var appErr error
		appender, appErr = duckdb.NewAppenderFromConn(duckConn, "", "metrics")
		return appErr
	})
	if err != nil {
		return NewInfrastructureError("failed to create appender", err)
	}
	defer appender.Close()

	now := time.Now()
	for _, m := range metrics {
		bounds := make([]any, len(m.BucketBounds))
		for i, b := range m.BucketBounds {
			bounds[i] = b
		}
		counts := make([]any, len(m.BucketCounts))
		for i, c := range m.BucketCounts {
			counts[i] = c
		}
		err := appender.AppendRow(
			uuid.New().String(),
			m.Timestamp,
			m.Name,
			string(m.MetricType),
			m.Value,
			bounds,
			counts,
			toDuckMap(m.Labels),
			m.Service,
			now,
		)
		if err != nil {
			return NewInfrastructureError("append metric row", err)
		}
	}

	if err := appender.Flush(); err != nil {
		return NewInfrastructureError("failed to flush metrics", err)
	}
	return nil
}

// QueryMetrics renders sel to SQL and scans matching rows back into
// model.Metrics, plus the total match count ignoring sel.Limit/
// sel.Offset (spec.md §4.2).
func (s *Storage) QueryMetrics(ctx context.Context, sel *query.Select) ([]*model.Metric, int, error) {
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
		return nil, 0, NewInfrastructureError("query metrics", err)
	}
	defer rows.Close()

	var out []*model.Metric
	for rows.Next() {
		var (
			id, name, metricType, service string
			ts                              int64
			value                           float64
			bounds, counts                  []any
			labels                          duckdb.Map
			ingestedAt                      time.Time
		)
		if err := rows.Scan(&id, &ts, &name, &metricType, &value, &bounds, &counts, &labels, &service, &ingestedAt); err != nil {
			return nil, 0, NewInfrastructureError("scan metric row", err)
		}
		m := &model.Metric{
			Timestamp:  ts,
			Name:       name,
			MetricType: model.MetricType(metricType),
			Value:      value,
			Service:    service,
		}
		if len(bounds) > 0 {
			m.BucketBounds = make([]float64, len(bounds))
			for i, b := range bounds {
				if f, ok := b.(float64); ok {
					m.BucketBounds[i] = f
				}
			}
		}
		if len(counts) > 0 {
			m.BucketCounts = make([]uint64, len(counts))
			for i, c := range counts {
				if u, ok := c.(uint64); ok {
					m.BucketCounts[i] = u
				}
			}
		}
		if len(labels) > 0 {
			m.Labels = make(map[string]string, len(labels))
			for k, v := range labels {
				m.Labels[fmt.Sprint(k)] = fmt.Sprint(v)
			}
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func (s *Storage) metricsAge(ctx context.Context) (model.DataAgeMetrics, error) {
	return ageMetrics(ctx, s.db, "metrics", "timestamp")
}

func (s *Storage) metricsDeleteOlderThan(ctx context.Context, cutoff int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM metrics WHERE timestamp < ?", cutoff)
	if err != nil {
		return NewInfrastructureError("delete expired metrics", err)
	}
	return nil
}
