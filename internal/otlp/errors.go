// Package otlp normalizes OTLP export requests (protobuf or JSON, over
// gRPC or HTTP) into Heimsight's canonical internal records, with
// partial-success bookkeeping for per-record validation failures.
package otlp

import "fmt"

// DecodeError reports a request that could not be decoded at all —
// malformed protobuf/JSON or an unsupported content type. The whole
// request is rejected (HTTP 400 / gRPC INVALID_ARGUMENT), unlike
// per-record validation failures which only count toward Rejected.
type DecodeError struct {
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("otlp decode: %s: %v", e.Reason, e.Cause)
	}
	return "otlp decode: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Result is the partial-success outcome of converting one OTLP export
// request, shared by all three signal converters and both transports.
type Result struct {
	Accepted int
	Rejected int
	Errors   []string
}

func (r *Result) reject(reason string) {
	r.Rejected++
	if len(r.Errors) < 20 {
		r.Errors = append(r.Errors, reason)
	}
}

func (r *Result) HasRejections() bool { return r.Rejected > 0 }

// ErrorMessage summarizes rejected-record reasons for the OTLP
// partial_success.error_message field.
func (r *Result) ErrorMessage() string {
	if len(r.Errors) == 0 {
		return ""
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return fmt.Sprintf("%d errors, first: %s", r.Rejected, r.Errors[0])
}
