package otlp

import (
	"fmt"

	collectorlogsv1 "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	commonv1 "go.opentelemetry.io/proto/otlp/common/v1"
	logsv1 "go.opentelemetry.io/proto/otlp/logs/v1"

	"github.com/heimsight/heimsight/internal/model"
)

// severityToLevel maps OTLP severity_number ranges to a LogLevel,
// following the OTLP spec's documented buckets (spec.md §4.1):
// 1-4 trace, 5-8 debug, 9-12 info, 13-16 warn, 17-20 error, 21-24 fatal.
func severityToLevel(n int32) model.LogLevel {
	switch {
	case n >= 1 && n <= 4:
		return model.LogLevelTrace
	case n >= 5 && n <= 8:
		return model.LogLevelDebug
	case n >= 9 && n <= 12:
		return model.LogLevelInfo
	case n >= 13 && n <= 16:
		return model.LogLevelWarn
	case n >= 17 && n <= 20:
		return model.LogLevelError
	case n >= 21 && n <= 24:
		return model.LogLevelFatal
	default:
		return model.LogLevelInfo
	}
}

func severityTextToLevel(text string) (model.LogLevel, bool) {
	l := model.LogLevel(toLowerASCII(text))
	return l, l.Valid()
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// bodyToMessage stringifies an OTLP log body, preferring the string
// value and falling back to the generic any-value stringification for
// non-string bodies (spec.md §4.1).
func bodyToMessage(v *commonv1.AnyValue) string {
	if v == nil {
		return ""
	}
	if sv, ok := v.Value.(*commonv1.AnyValue_StringValue); ok {
		return sv.StringValue
	}
	return anyValueToString(v)
}

// ConvertLogs flattens an OTLP ExportLogsServiceRequest's
// Resource->Scope->LogRecord hierarchy into canonical LogRecords,
// dropping and counting records that fail validation (spec.md §4.1).
func ConvertLogs(req *collectorlogsv1.ExportLogsServiceRequest) ([]*model.LogRecord, *Result) {
	result := &Result{}
	var out []*model.LogRecord

	for _, rl := range req.GetResourceLogs() {
		var resourceAttrs map[string]string
		if rl.Resource != nil {
			resourceAttrs = flattenAttributes(rl.Resource.Attributes)
		}
		svc := serviceName(resourceAttrs)

		for _, sl := range rl.GetScopeLogs() {
			for _, lr := range sl.GetLogRecords() {
				rec, err := convertLogRecord(lr, resourceAttrs, svc)
				if err != nil {
					result.reject(err.Error())
					continue
				}
				out = append(out, rec)
				result.Accepted++
			}
		}
	}
	return out, result
}

func convertLogRecord(lr *logsv1.LogRecord, resourceAttrs map[string]string, svc string) (*model.LogRecord, error) {
	ts := lr.GetTimeUnixNano()
	if ts == 0 {
		ts = lr.GetObservedTimeUnixNano()
	}

	level := severityToLevel(int32(lr.GetSeverityNumber()))
	if lr.GetSeverityText() != "" {
		if l, ok := severityTextToLevel(lr.GetSeverityText()); ok {
			level = l
		}
	}

	rec := &model.LogRecord{
		Timestamp:  int64(ts),
		Level:      level,
		Message:    bodyToMessage(lr.GetBody()),
		Service:    svc,
		TraceID:    hexEncode(lr.GetTraceId()),
		SpanID:     hexEncode(lr.GetSpanId()),
		Attributes: mergeAttributes(resourceAttrs, flattenAttributes(lr.GetAttributes())),
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("log record: %w", err)
	}
	return rec, nil
}
