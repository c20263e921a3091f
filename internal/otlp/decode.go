package otlp

import (
	"strings"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	collectorlogsv1 "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetricsv1 "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	collectortracev1 "go.opentelemetry.io/proto/otlp/collector/trace/v1"
)

// ContentType is a normalized OTLP request content type.
type ContentType int

const (
	ContentTypeProtobuf ContentType = iota
	ContentTypeJSON
)

// ParseContentType classifies an HTTP Content-Type header value,
// supplementing the teacher (which accepted only protobuf) with JSON
// per spec.md §4.1.
func ParseContentType(header string) (ContentType, error) {
	mediaType := strings.TrimSpace(strings.SplitN(header, ";", 2)[0])
	switch strings.ToLower(mediaType) {
	case "application/x-protobuf":
		return ContentTypeProtobuf, nil
	case "application/json":
		return ContentTypeJSON, nil
	default:
		return 0, &DecodeError{Reason: "unsupported content type '" + header + "'"}
	}
}

func unmarshal(body []byte, ct ContentType, msg proto.Message) error {
	switch ct {
	case ContentTypeProtobuf:
		if err := proto.Unmarshal(body, msg); err != nil {
			return &DecodeError{Reason: "malformed protobuf", Cause: err}
		}
	case ContentTypeJSON:
		if err := protojson.Unmarshal(body, msg); err != nil {
			return &DecodeError{Reason: "malformed JSON", Cause: err}
		}
	default:
		return &DecodeError{Reason: "unknown content type"}
	}
	return nil
}

// DecodeLogsRequest decodes an OTLP ExportLogsServiceRequest body.
func DecodeLogsRequest(body []byte, ct ContentType) (*collectorlogsv1.ExportLogsServiceRequest, error) {
	req := &collectorlogsv1.ExportLogsServiceRequest{}
	if err := unmarshal(body, ct, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeMetricsRequest decodes an OTLP ExportMetricsServiceRequest body.
func DecodeMetricsRequest(body []byte, ct ContentType) (*collectormetricsv1.ExportMetricsServiceRequest, error) {
	req := &collectormetricsv1.ExportMetricsServiceRequest{}
	if err := unmarshal(body, ct, req); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeTraceRequest decodes an OTLP ExportTraceServiceRequest body.
func DecodeTraceRequest(body []byte, ct ContentType) (*collectortracev1.ExportTraceServiceRequest, error) {
	req := &collectortracev1.ExportTraceServiceRequest{}
	if err := unmarshal(body, ct, req); err != nil {
		return nil, err
	}
	return req, nil
}

// MarshalResponse encodes an OTLP response message back in the
// transport's content type, mirroring the request encoding.
func MarshalResponse(msg proto.Message, ct ContentType) ([]byte, error) {
	switch ct {
	case ContentTypeJSON:
		return protojson.Marshal(msg)
	default:
		return proto.Marshal(msg)
	}
}
