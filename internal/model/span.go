package model

import "sort"

type SpanKind string

const (
	SpanKindInternal SpanKind = "INTERNAL"
	SpanKindServer   SpanKind = "SERVER"
	SpanKindClient   SpanKind = "CLIENT"
	SpanKindProducer SpanKind = "PRODUCER"
	SpanKindConsumer SpanKind = "CONSUMER"
)

type StatusCode string

const (
	StatusOK    StatusCode = "OK"
	StatusError StatusCode = "ERROR"
	StatusUnset StatusCode = "UNSET"
)

// SpanEvent is a timestamped annotation attached to a Span.
type SpanEvent struct {
	Timestamp  int64             `json:"timestamp"`
	Name       string            `json:"name"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// SpanLink references another span, e.g. across traces.
type SpanLink struct {
	TraceID    string            `json:"trace_id"`
	SpanID     string            `json:"span_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Span is the canonical internal representation of one timed operation.
type Span struct {
	TraceID             string            `json:"trace_id"`
	SpanID              string            `json:"span_id"`
	ParentSpanID        string            `json:"parent_span_id,omitempty"`
	StartTime           int64             `json:"start_time"`
	EndTime             int64             `json:"end_time"`
	Name                string            `json:"name"`
	Operation           string            `json:"operation"`
	Service             string            `json:"service"`
	Kind                SpanKind          `json:"span_kind"`
	StatusCode          StatusCode        `json:"status_code"`
	StatusMessage       string            `json:"status_message,omitempty"`
	Attributes          map[string]string `json:"attributes,omitempty"`
	ResourceAttributes  map[string]string `json:"resource_attributes,omitempty"`
	Events              []SpanEvent       `json:"events,omitempty"`
	Links               []SpanLink        `json:"links,omitempty"`
}

// DurationNs returns end_time - start_time, the spec.md §3 invariant (c)
// quantity. Callers validate non-negativity separately so the invariant
// violation can be reported rather than silently clamped.
func (s *Span) DurationNs() int64 {
	return s.EndTime - s.StartTime
}

// Validate checks spec.md §3 invariant (c).
func (s *Span) Validate() error {
	if s.TraceID == "" {
		return &ValidationError{Field: "trace_id", Reason: "must not be empty"}
	}
	if s.SpanID == "" {
		return &ValidationError{Field: "span_id", Reason: "must not be empty"}
	}
	if s.EndTime < s.StartTime {
		return &ValidationError{Field: "end_time", Reason: "must be >= start_time"}
	}
	if s.Kind == "" {
		s.Kind = SpanKindInternal
	}
	if s.StatusCode == "" {
		s.StatusCode = StatusUnset
	}
	return nil
}

// Trace is the derived forest of spans sharing a trace ID.
type Trace struct {
	TraceID string  `json:"trace_id"`
	Spans   []*Span `json:"spans"`
	Roots   []*TraceNode `json:"roots"`
}

// TraceNode links a span to its children, forming the parent_span_id forest.
// A span whose parent is missing from the trace is treated as a root
// (spec.md §9: "a missing parent is not an error").
type TraceNode struct {
	Span     *Span        `json:"span"`
	Children []*TraceNode `json:"children,omitempty"`
}

// BuildTrace orders spans by start time and links them into a forest by
// parent_span_id. Spans must all share the same TraceID.
func BuildTrace(traceID string, spans []*Span) *Trace {
	ordered := make([]*Span, len(spans))
	copy(ordered, spans)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartTime < ordered[j].StartTime
	})

	nodes := make(map[string]*TraceNode, len(ordered))
	for _, s := range ordered {
		nodes[s.SpanID] = &TraceNode{Span: s}
	}

	var roots []*TraceNode
	for _, s := range ordered {
		node := nodes[s.SpanID]
		parent, ok := nodes[s.ParentSpanID]
		if s.ParentSpanID == "" || !ok {
			roots = append(roots, node)
			continue
		}
		parent.Children = append(parent.Children, node)
	}

	return &Trace{TraceID: traceID, Spans: ordered, Roots: roots}
}
