package duckstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"

	"github.com/heimsight/heimsight/internal/aggregation"
	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/query"
)

// InsertLogs appends records to the logs table via DuckDB's Appender
// API, computing the normalized_message materialized column in Go
// (DuckDB has no UDF registration path from this driver), generalizing
// the teacher's StoreLogs from a fixed OTLP-proto walk to a slice of
// already-normalized model.LogRecords.
func (s *Storage) InsertLogs(ctx context.Context, records []*model.LogRecord) error {
	if len(records) == 0 {
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
		appender, appErr = duckdb.NewAppenderFromConn(duckConn, "", "logs")
		return appErr
	})
	if err != nil {
		return NewInfrastructureError("failed to create appender", err)
	}
	defer appender.Close()

	now := time.Now()
	for _, r := range records {
		err := appender.AppendRow(
			uuid.New().String(),
			r.Timestamp,
			string(r.Level),
			r.Message,
			aggregation.Normalize(r.Message),
			r.Service,
			r.TraceID,
			r.SpanID,
			toDuckMap(r.Attributes),
			now,
		)
		if err != nil {
			return NewInfrastructureError("append log row", err)
		}
	}

	if err := appender.Flush(); err != nil {
		return NewInfrastructureError("failed to flush logs", err)
	}
	return nil
}

// QueryLogs renders sel to parameterized SQL and scans matching rows
// back into model.LogRecords, plus the total match count ignoring
// sel.Limit/sel.Offset (spec.md §4.2).
func (s *Storage) QueryLogs(ctx context.Context, sel *query.Select) ([]*model.LogRecord, int, error) {
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
		return nil, 0, NewInfrastructureError("query logs", err)
	}
	defer rows.Close()

	var out []*model.LogRecord
	for rows.Next() {
		var (
			id, level, message               string
			normalizedMessage, service        string
			traceID, spanID                   sql.NullString
			ts                                 int64
			attrs                              duckdb.Map
			ingestedAt                          time.Time
		)
		if err := rows.Scan(&id, &ts, &level, &message, &normalizedMessage, &service, &traceID, &spanID, &attrs, &ingestedAt); err != nil {
			return nil, 0, NewInfrastructureError("scan log row", err)
		}
		rec := &model.LogRecord{
			Timestamp: ts,
			Level:     model.LogLevel(level),
			Message:   message,
			Service:   service,
			TraceID:   traceID.String,
			SpanID:    spanID.String,
		}
		if len(attrs) > 0 {
			rec.Attributes = make(map[string]string, len(attrs))
			for k, v := range attrs {
				rec.Attributes[fmt.Sprint(k)] = fmt.Sprint(v)
			}
		}
		out = append(out, rec)
	}
	return out, total, rows.Err()
}

// countMatching runs sel's WHERE clause through RenderCountSQL to
// report the total match count independent of LIMIT/OFFSET.
func (s *Storage) countMatching(ctx context.Context, sel *query.Select) (int, error) {
	sqlText, args, err := query.RenderCountSQL(sel)
	if err != nil {
		return 0, err
	}
	var total int
	if err := s.db.QueryRowContext(ctx, sqlText, args...).Scan(&total); err != nil {
		return 0, NewInfrastructureError("count matching rows", err)
	}
	return total, nil
}

// logsAge reports the age distribution of the logs table, backing
// LogAdapter.OldestNewestCount.
func (s *Storage) logsAge(ctx context.Context) (model.DataAgeMetrics, error) {
	return ageMetrics(ctx, s.db, "logs", "timestamp")
}

// logsDeleteOlderThan sweeps rows older than cutoff, backing
// LogAdapter.DeleteOlderThan. Policy-driven TTL sweeps go through
// SetTableTTL in retention.go (DuckDB has no ALTER TABLE ... MODIFY TTL).
func (s *Storage) logsDeleteOlderThan(ctx context.Context, cutoff int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM logs WHERE timestamp < ?", cutoff)
	if err != nil {
		return NewInfrastructureError("delete expired logs", err)
	}
	return nil
}

func ageMetrics(ctx context.Context, db *sql.DB, table, tsCol string) (model.DataAgeMetrics, error) {
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT count(*), min(%s), max(%s) FROM %s", tsCol, tsCol, table))
	var count uint64
	var oldest, newest sql.NullInt64
	if err := row.Scan(&count, &oldest, &newest); err != nil {
		return model.DataAgeMetrics{}, NewInfrastructureError("age metrics query", err)
	}
	m := model.DataAgeMetrics{Count: count}
	if count > 0 {
		o, n := oldest.Int64, newest.Int64
		m.OldestTS, m.NewestTS = &o, &n
	}
	return m, nil
}
