package model

// LogLevel is the severity of a LogRecord.
type LogLevel string

const (
	LogLevelTrace LogLevel = "trace"
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
	LogLevelFatal LogLevel = "fatal"
)

// levelOrder gives the severity ordering used by comparison operators
// in the query executor (higher is more severe).
var levelOrder = map[LogLevel]int{
	LogLevelTrace: 0,
	LogLevelDebug: 1,
	LogLevelInfo:  2,
	LogLevelWarn:  3,
	LogLevelError: 4,
	LogLevelFatal: 5,
}

// Order returns the severity rank of the level, or -1 if unknown.
func (l LogLevel) Order() int {
	if o, ok := levelOrder[l]; ok {
		return o
	}
	return -1
}

func (l LogLevel) Valid() bool {
	_, ok := levelOrder[l]
	return ok
}

// LogRecord is the canonical internal representation of a log entry,
// produced by the OTLP normalization layer or the native REST API.
type LogRecord struct {
	Timestamp  int64             `json:"timestamp"`
	Level      LogLevel          `json:"level"`
	Message    string            `json:"message"`
	Service    string            `json:"service"`
	TraceID    string            `json:"trace_id,omitempty"`
	SpanID     string            `json:"span_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Validate checks the invariants spec.md Testable Property 1 requires.
func (r *LogRecord) Validate() error {
	if r.Message == "" {
		return &ValidationError{Field: "message", Reason: "must not be empty"}
	}
	if r.Service == "" {
		return &ValidationError{Field: "service", Reason: "must not be empty"}
	}
	if r.Level == "" {
		r.Level = LogLevelInfo
	} else if !r.Level.Valid() {
		return &ValidationError{Field: "level", Reason: "unknown level " + string(r.Level)}
	}
	return nil
}

// ValidationError reports a single record-level schema violation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}
