// Package memstore is the in-process reference storage backend: a
// RWMutex-guarded slice per signal, queried by linear scan through
// internal/query's native evaluator. It exists so the system's query
// and retention semantics have one backend that needs nothing external,
// matching spec.md §4.2's "a reference backend with no external
// dependency" requirement.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/heimsight/heimsight/internal/aggregation"
	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/query"
	"github.com/heimsight/heimsight/internal/storage"
)

// normalizedMessageAttr is the reserved attribute key insertLogs
// materializes normalized_message under, read back by logRow.Field so
// native-mode WHERE/ORDER BY against normalized_message agrees
// bit-for-bit with duckstore's materialized column (spec.md §9).
const normalizedMessageAttr = "normalized_message"

// Store holds logs, metrics and spans in memory. Each signal has its
// own lock so a slow log query never blocks metric ingestion. Store
// itself is not a storage.LogStore/MetricStore/TraceStore — the three
// signals share an OldestNewestCount/DeleteOlderThan method shape, so
// Logs/Metrics/Traces return thin adapters that each implement exactly
// one of those interfaces.
type Store struct {
	logMu sync.RWMutex
	logs  []*model.LogRecord

	metricMu sync.RWMutex
	metrics  []*model.Metric

	spanMu sync.RWMutex
	spans  []*model.Span
}

// New returns an empty Store.
func New() *Store {
	return &Store{}
}

// Health always reports healthy: there is no external connection to lose.
func (s *Store) Health(_ context.Context) error {
	return nil
}

// Logs returns the storage.LogStore view of this Store.
func (s *Store) Logs() storage.LogStore { return LogAdapter{s} }

// Metrics returns the storage.MetricStore view of this Store.
func (s *Store) Metrics() storage.MetricStore { return MetricAdapter{s} }

// Traces returns the storage.TraceStore view of this Store.
func (s *Store) Traces() storage.TraceStore { return TraceAdapter{s} }

// SetTableTTL implements retention.TableTTLSetter: like duckstore,
// the in-memory backend has no standing TTL state, so a TTL change is
// an immediate sweep against the requested cutoff. Aggregate-tier table
// names are accepted with nothing to sweep, since memstore keeps no
// aggregate tiers.
func (s *Store) SetTableTTL(_ context.Context, table string, ttlDays int) error {
	cutoff := time.Now().Add(-time.Duration(ttlDays) * 24 * time.Hour).UnixNano()
	switch table {
	case "logs":
		s.logDeleteOlderThan(cutoff)
	case "metrics":
		s.metricDeleteOlderThan(cutoff)
	case "spans":
		s.spanDeleteOlderThan(cutoff)
	default:
		for _, tier := range aggregation.Topology {
			if tier.TargetTable == table {
				return nil
			}
		}
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}

func (s *Store) insertLogs(records []*model.LogRecord) {
	for _, r := range records {
		if r.Attributes == nil {
			r.Attributes = make(map[string]string, 1)
		}
		r.Attributes[normalizedMessageAttr] = aggregation.Normalize(r.Message)
	}

	s.logMu.Lock()
	defer s.logMu.Unlock()
	s.logs = append(s.logs, records...)
}

func (s *Store) queryLogs(sel *query.Select) ([]*model.LogRecord, int) {
	s.logMu.RLock()
	defer s.logMu.RUnlock()

	matched := make([]logRow, 0, len(s.logs))
	for _, r := range s.logs {
		lr := logRow{r}
		if query.EvalNative(sel.Where, lr) {
			matched = append(matched, lr)
		}
	}
	total := len(matched)
	page := query.ApplyOrderLimitOffset(matched, sel, func(a, b logRow, col string) bool {
		av, _ := a.Field(col)
		bv, _ := b.Field(col)
		return fieldLess(av, bv)
	})
	result := make([]*model.LogRecord, len(page))
	for i, lr := range page {
		result[i] = lr.r
	}
	return result, total
}

func (s *Store) logAge() model.DataAgeMetrics {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	return ageMetrics(len(s.logs), func(i int) int64 { return s.logs[i].Timestamp })
}

func (s *Store) logDeleteOlderThan(cutoff int64) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	kept := s.logs[:0]
	for _, r := range s.logs {
		if r.Timestamp >= cutoff {
			kept = append(kept, r)
		}
	}
	s.logs = kept
}

func (s *Store) insertMetrics(metrics []*model.Metric) {
	s.metricMu.Lock()
	defer s.metricMu.Unlock()
	s.metrics = append(s.metrics, metrics...)
}

func (s *Store) queryMetrics(sel *query.Select) ([]*model.Metric, int) {
	s.metricMu.RLock()
	defer s.metricMu.RUnlock()

	matched := make([]metricRow, 0, len(s.metrics))
	for _, m := range s.metrics {
		mr := metricRow{m}
		if query.EvalNative(sel.Where, mr) {
			matched = append(matched, mr)
		}
	}
	total := len(matched)
	page := query.ApplyOrderLimitOffset(matched, sel, func(a, b metricRow, col string) bool {
		av, _ := a.Field(col)
		bv, _ := b.Field(col)
		return fieldLess(av, bv)
	})
	result := make([]*model.Metric, len(page))
	for i, mr := range page {
		result[i] = mr.m
	}
	return result, total
}

func (s *Store) metricAge() model.DataAgeMetrics {
	s.metricMu.RLock()
	defer s.metricMu.RUnlock()
	return ageMetrics(len(s.metrics), func(i int) int64 { return s.metrics[i].Timestamp })
}

func (s *Store) metricDeleteOlderThan(cutoff int64) {
	s.metricMu.Lock()
	defer s.metricMu.Unlock()
	kept := s.metrics[:0]
	for _, m := range s.metrics {
		if m.Timestamp >= cutoff {
			kept = append(kept, m)
		}
	}
	s.metrics = kept
}

func (s *Store) insertSpans(spans []*model.Span) {
	s.spanMu.Lock()
	defer s.spanMu.Unlock()
	s.spans = append(s.spans, spans...)
}

func (s *Store) querySpans(sel *query.Select) ([]*model.Span, int) {
	s.spanMu.RLock()
	defer s.spanMu.RUnlock()

	matched := make([]spanRow, 0, len(s.spans))
	for _, sp := range s.spans {
		sr := spanRow{sp}
		if query.EvalNative(sel.Where, sr) {
			matched = append(matched, sr)
		}
	}
	total := len(matched)
	page := query.ApplyOrderLimitOffset(matched, sel, func(a, b spanRow, col string) bool {
		av, _ := a.Field(col)
		bv, _ := b.Field(col)
		return fieldLess(av, bv)
	})
	result := make([]*model.Span, len(page))
	for i, sr := range page {
		result[i] = sr.s
	}
	return result, total
}

func (s *Store) getTrace(traceID string) *model.Trace {
	s.spanMu.RLock()
	defer s.spanMu.RUnlock()

	var spans []*model.Span
	for _, sp := range s.spans {
		if sp.TraceID == traceID {
			spans = append(spans, sp)
		}
	}
	if len(spans) == 0 {
		return nil
	}
	return model.BuildTrace(traceID, spans)
}

func (s *Store) spanAge() model.DataAgeMetrics {
	s.spanMu.RLock()
	defer s.spanMu.RUnlock()
	return ageMetrics(len(s.spans), func(i int) int64 { return s.spans[i].StartTime })
}

func (s *Store) spanDeleteOlderThan(cutoff int64) {
	s.spanMu.Lock()
	defer s.spanMu.Unlock()
	kept := s.spans[:0]
	for _, sp := range s.spans {
		if sp.StartTime >= cutoff {
			kept = append(kept, sp)
		}
	}
	s.spans = kept
}

func ageMetrics(n int, at func(i int) int64) model.DataAgeMetrics {
	if n == 0 {
		return model.DataAgeMetrics{}
	}
	oldest, newest := at(0), at(0)
	for i := 1; i < n; i++ {
		if v := at(i); v < oldest {
			oldest = v
		} else if v > newest {
			newest = v
		}
	}
	count := uint64(n)
	return model.DataAgeMetrics{Count: count, OldestTS: &oldest, NewestTS: &newest}
}

// LogAdapter implements storage.LogStore over a shared Store.
type LogAdapter struct{ s *Store }

func (a LogAdapter) InsertLogs(_ context.Context, records []*model.LogRecord) error {
	a.s.insertLogs(records)
	return nil
}

func (a LogAdapter) QueryLogs(_ context.Context, sel *query.Select) ([]*model.LogRecord, int, error) {
	page, total := a.s.queryLogs(sel)
	return page, total, nil
}

func (a LogAdapter) OldestNewestCount(_ context.Context) (model.DataAgeMetrics, error) {
	return a.s.logAge(), nil
}

func (a LogAdapter) DeleteOlderThan(_ context.Context, cutoff int64) error {
	a.s.logDeleteOlderThan(cutoff)
	return nil
}

// MetricAdapter implements storage.MetricStore over a shared Store.
type MetricAdapter struct{ s *Store }

func (a MetricAdapter) InsertMetrics(_ context.Context, metrics []*model.Metric) error {
	a.s.insertMetrics(metrics)
	return nil
}

func (a MetricAdapter) QueryMetrics(_ context.Context, sel *query.Select) ([]*model.Metric, int, error) {
	page, total := a.s.queryMetrics(sel)
	return page, total, nil
}

func (a MetricAdapter) OldestNewestCount(_ context.Context) (model.DataAgeMetrics, error) {
	return a.s.metricAge(), nil
}

func (a MetricAdapter) DeleteOlderThan(_ context.Context, cutoff int64) error {
	a.s.metricDeleteOlderThan(cutoff)
	return nil
}

// TraceAdapter implements storage.TraceStore over a shared Store.
type TraceAdapter struct{ s *Store }

func (a TraceAdapter) InsertSpans(_ context.Context, spans []*model.Span) error {
	a.s.insertSpans(spans)
	return nil
}

func (a TraceAdapter) QuerySpans(_ context.Context, sel *query.Select) ([]*model.Span, int, error) {
	page, total := a.s.querySpans(sel)
	return page, total, nil
}

func (a TraceAdapter) GetTrace(_ context.Context, traceID string) (*model.Trace, error) {
	return a.s.getTrace(traceID), nil
}

func (a TraceAdapter) OldestNewestCount(_ context.Context) (model.DataAgeMetrics, error) {
	return a.s.spanAge(), nil
}

func (a TraceAdapter) DeleteOlderThan(_ context.Context, cutoff int64) error {
	a.s.spanDeleteOlderThan(cutoff)
	return nil
}
