package memstore

import (
	"github.com/heimsight/heimsight/internal/model"
)

// logRow adapts a LogRecord to query.Row for native evaluation.
type logRow struct{ r *model.LogRecord }

func (l logRow) Field(name string) (any, bool) {
	switch name {
	case "timestamp":
		return l.r.Timestamp, true
	case "level":
		return string(l.r.Level), true
	case "message":
		return l.r.Message, true
	case "service":
		return l.r.Service, true
	case "trace_id":
		return l.r.TraceID, true
	case "span_id":
		return l.r.SpanID, true
	case "normalized_message":
		if v, ok := l.r.Attributes["normalized_message"]; ok {
			return v, true
		}
		return nil, true
	default:
		if v, ok := l.r.Attributes[name]; ok {
			return v, true
		}
		return nil, false
	}
}

// metricRow adapts a Metric to query.Row.
type metricRow struct{ m *model.Metric }

func (m metricRow) Field(name string) (any, bool) {
	switch name {
	case "timestamp":
		return m.m.Timestamp, true
	case "name":
		return m.m.Name, true
	case "metric_type":
		return string(m.m.MetricType), true
	case "value":
		return m.m.Value, true
	case "service":
		return m.m.Service, true
	default:
		if v, ok := m.m.Labels[name]; ok {
			return v, true
		}
		return nil, false
	}
}

// spanRow adapts a Span to query.Row.
type spanRow struct{ s *model.Span }

func (s spanRow) Field(name string) (any, bool) {
	switch name {
	case "trace_id":
		return s.s.TraceID, true
	case "span_id":
		return s.s.SpanID, true
	case "parent_span_id":
		return s.s.ParentSpanID, true
	case "start_time":
		return s.s.StartTime, true
	case "end_time":
		return s.s.EndTime, true
	case "duration_ns":
		return s.s.DurationNs(), true
	case "name":
		return s.s.Name, true
	case "operation":
		return s.s.Operation, true
	case "service":
		return s.s.Service, true
	case "span_kind":
		return string(s.s.Kind), true
	case "status_code":
		return string(s.s.StatusCode), true
	case "status_message":
		return s.s.StatusMessage, true
	default:
		if v, ok := s.s.Attributes[name]; ok {
			return v, true
		}
		return nil, false
	}
}

func fieldLess(a, b any) bool {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return av < bv
		}
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	}
	return false
}
