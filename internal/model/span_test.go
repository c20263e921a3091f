package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpanValidate_RejectsNegativeDuration(t *testing.T) {
	s := &Span{TraceID: "t1", SpanID: "s1", StartTime: 100, EndTime: 50}
	require.Error(t, s.Validate())
}

func TestSpanValidate_DefaultsKindAndStatus(t *testing.T) {
	s := &Span{TraceID: "t1", SpanID: "s1", StartTime: 10, EndTime: 20}
	require.NoError(t, s.Validate())
	require.Equal(t, SpanKindInternal, s.Kind)
	require.Equal(t, StatusUnset, s.StatusCode)
}

func TestBuildTrace_MissingParentBecomesRoot(t *testing.T) {
	spans := []*Span{
		{TraceID: "t1", SpanID: "a", ParentSpanID: "ghost", StartTime: 1, EndTime: 5},
		{TraceID: "t1", SpanID: "b", StartTime: 2, EndTime: 6},
	}
	trace := BuildTrace("t1", spans)
	require.Len(t, trace.Roots, 2)
}

func TestBuildTrace_LinksChildren(t *testing.T) {
	spans := []*Span{
		{TraceID: "t1", SpanID: "root", StartTime: 1, EndTime: 10},
		{TraceID: "t1", SpanID: "child", ParentSpanID: "root", StartTime: 2, EndTime: 4},
	}
	trace := BuildTrace("t1", spans)
	require.Len(t, trace.Roots, 1)
	require.Len(t, trace.Roots[0].Children, 1)
	require.Equal(t, "child", trace.Roots[0].Children[0].Span.SpanID)
}
