package duckstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marcboeker/go-duckdb"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/query"
)

// InsertSpans appends spans via the Appender API. Events and links are
// serialized to JSON columns instead of the teacher's separate
// span_events/span_links tables — a deliberate simplification recorded
// in DESIGN.md, since a span's events/links are always read as a unit
// (never filtered independently) in every operation spec.md defines.
func (s *Storage) InsertSpans(ctx context.Context, spans []*model.Span) error {
	if len(spans) == 0 {
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
		appender, appErr = duckdb.NewAppenderFromConn(duckConn, "", "spans")
		return appErr
	})
	if err != nil {
		return NewInfrastructureError("failed to create appender", err)
	}
	defer appender.Close()

	now := time.Now()
	for _, sp := range spans {
		eventsJSON, _ := json.Marshal(sp.Events)
		linksJSON, _ := json.Marshal(sp.Links)

		err := appender.AppendRow(
			sp.TraceID,
			sp.SpanID,
			sp.ParentSpanID,
			sp.StartTime,
			sp.EndTime,
			sp.DurationNs(),
			sp.Name,
			sp.Operation,
			sp.Service,
			string(sp.Kind),
			string(sp.StatusCode),
			sp.StatusMessage,
			toDuckMap(sp.Attributes),
			toDuckMap(sp.ResourceAttributes),
			string(eventsJSON),
			string(linksJSON),
			now,
		)
		if err != nil {
			return NewInfrastructureError("append span row", err)
		}
	}

	if err := appender.Flush(); err != nil {
		return NewInfrastructureError("failed to flush spans", err)
	}
	return nil
}

// QuerySpans renders sel to SQL and scans matching rows into model.Spans,
// plus the total match count ignoring sel.Limit/sel.Offset (spec.md §4.2).
func (s *Storage) QuerySpans(ctx context.Context, sel *query.Select) ([]*model.Span, int, error) {
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
		return nil, 0, NewInfrastructureError("query spans", err)
	}
	defer rows.Close()

	var out []*model.Span
	for rows.Next() {
		sp, err := scanSpanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sp)
	}
	return out, total, rows.Err()
}

// GetTrace loads every span sharing traceID and assembles the forest.
func (s *Storage) GetTrace(ctx context.Context, traceID string) (*model.Trace, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM spans WHERE trace_id = ?", traceID)
	if err != nil {
		return nil, NewInfrastructureError("query trace spans", err)
	}
	defer rows.Close()

	var spans []*model.Span
	for rows.Next() {
		sp, err := scanSpanRow(rows)
		if err != nil {
			return nil, err
		}
		spans = append(spans, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, NewInfrastructureError("scan trace spans", err)
	}
	if len(spans) == 0 {
		return nil, nil
	}
	return model.BuildTrace(traceID, spans), nil
}

func scanSpanRow(rows *sql.Rows) (*model.Span, error) {
	var (
		traceID, spanID, parentSpanID sql.NullString
		startTime, endTime, duration  int64
		name, operation, service      string
		kind, statusCode              string
		statusMessage                 sql.NullString
		attrs, resourceAttrs          duckdb.Map
		eventsJSON, linksJSON         sql.NullString
		ingestedAt                    time.Time
	)
	if err := rows.Scan(&traceID, &spanID, &parentSpanID, &startTime, &endTime, &duration,
		&name, &operation, &service, &kind, &statusCode, &statusMessage,
		&attrs, &resourceAttrs, &eventsJSON, &linksJSON, &ingestedAt); err != nil {
		return nil, NewInfrastructureError("scan span row", err)
	}

	sp := &model.Span{
		TraceID:       traceID.String,
		SpanID:        spanID.String,
		ParentSpanID:  parentSpanID.String,
		StartTime:     startTime,
		EndTime:       endTime,
		Name:          name,
		Operation:     operation,
		Service:       service,
		Kind:          model.SpanKind(kind),
		StatusCode:    model.StatusCode(statusCode),
		StatusMessage: statusMessage.String,
	}
	if len(attrs) > 0 {
		sp.Attributes = make(map[string]string, len(attrs))
		for k, v := range attrs {
			sp.Attributes[fmt.Sprint(k)] = fmt.Sprint(v)
		}
	}
	if len(resourceAttrs) > 0 {
		sp.ResourceAttributes = make(map[string]string, len(resourceAttrs))
		for k, v := range resourceAttrs {
			sp.ResourceAttributes[fmt.Sprint(k)] = fmt.Sprint(v)
		}
	}
	if eventsJSON.Valid && eventsJSON.String != "" {
		_ = json.Unmarshal([]byte(eventsJSON.String), &sp.Events)
	}
	if linksJSON.Valid && linksJSON.String != "" {
		_ = json.Unmarshal([]byte(linksJSON.String), &sp.Links)
	}
	return sp, nil
}

func (s *Storage) spansAge(ctx context.Context) (model.DataAgeMetrics, error) {
	return ageMetrics(ctx, s.db, "spans", "start_time")
}

func (s *Storage) spansDeleteOlderThan(ctx context.Context, cutoff int64) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM spans WHERE start_time < ?", cutoff)
	if err != nil {
		return NewInfrastructureError("delete expired spans", err)
	}
	return nil
}
