package otlp

import (
	"fmt"

	collectortracev1 "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"

	"github.com/heimsight/heimsight/internal/model"
)

var spanKindNames = map[tracev1.Span_SpanKind]model.SpanKind{
	tracev1.Span_SPAN_KIND_SERVER:   model.SpanKindServer,
	tracev1.Span_SPAN_KIND_CLIENT:   model.SpanKindClient,
	tracev1.Span_SPAN_KIND_PRODUCER: model.SpanKindProducer,
	tracev1.Span_SPAN_KIND_CONSUMER: model.SpanKindConsumer,
	tracev1.Span_SPAN_KIND_INTERNAL: model.SpanKindInternal,
}

func spanKind(k tracev1.Span_SpanKind) model.SpanKind {
	if kind, ok := spanKindNames[k]; ok {
		return kind
	}
	return model.SpanKindInternal
}

var statusCodeNames = map[tracev1.Status_StatusCode]model.StatusCode{
	tracev1.Status_STATUS_CODE_OK:    model.StatusOK,
	tracev1.Status_STATUS_CODE_ERROR: model.StatusError,
	tracev1.Status_STATUS_CODE_UNSET: model.StatusUnset,
}

func statusCode(s *tracev1.Status) model.StatusCode {
	if s == nil {
		return model.StatusUnset
	}
	if code, ok := statusCodeNames[s.Code]; ok {
		return code
	}
	return model.StatusUnset
}

// ConvertTraces converts OTLP spans directly into canonical Spans,
// preserving event/link order (spec.md §4.1).
func ConvertTraces(req *collectortracev1.ExportTraceServiceRequest) ([]*model.Span, *Result) {
	result := &Result{}
	var out []*model.Span

	for _, rs := range req.GetResourceSpans() {
		var resourceAttrs map[string]string
		if rs.Resource != nil {
			resourceAttrs = flattenAttributes(rs.Resource.Attributes)
		}
		svc := serviceName(resourceAttrs)

		for _, ss := range rs.GetScopeSpans() {
			for _, sp := range ss.GetSpans() {
				span, err := convertSpan(sp, resourceAttrs, svc)
				if err != nil {
					result.reject(err.Error())
					continue
				}
				out = append(out, span)
				result.Accepted++
			}
		}
	}
	return out, result
}

func convertSpan(sp *tracev1.Span, resourceAttrs map[string]string, svc string) (*model.Span, error) {
	span := &model.Span{
		TraceID:            hexEncode(sp.GetTraceId()),
		SpanID:             hexEncode(sp.GetSpanId()),
		ParentSpanID:       hexEncode(sp.GetParentSpanId()),
		StartTime:          int64(sp.GetStartTimeUnixNano()),
		EndTime:            int64(sp.GetEndTimeUnixNano()),
		Name:               sp.GetName(),
		Operation:          sp.GetName(),
		Service:            svc,
		Kind:               spanKind(sp.GetKind()),
		StatusCode:         statusCode(sp.GetStatus()),
		Attributes:         flattenAttributes(sp.GetAttributes()),
		ResourceAttributes: resourceAttrs,
	}
	if sp.GetStatus() != nil {
		span.StatusMessage = sp.GetStatus().GetMessage()
	}

	for _, ev := range sp.GetEvents() {
		span.Events = append(span.Events, model.SpanEvent{
			Timestamp:  int64(ev.GetTimeUnixNano()),
			Name:       ev.GetName(),
			Attributes: flattenAttributes(ev.GetAttributes()),
		})
	}
	for _, lk := range sp.GetLinks() {
		span.Links = append(span.Links, model.SpanLink{
			TraceID:    hexEncode(lk.GetTraceId()),
			SpanID:     hexEncode(lk.GetSpanId()),
			Attributes: flattenAttributes(lk.GetAttributes()),
		})
	}

	if err := span.Validate(); err != nil {
		return nil, fmt.Errorf("span %s: %w", span.SpanID, err)
	}
	return span, nil
}
