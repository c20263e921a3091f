package httpapi

import (
	"io"
	"log"
	"net/http"

	collectorlogsv1 "go.opentelemetry.io/proto/otlp/collector/logs/v1"
	collectormetricsv1 "go.opentelemetry.io/proto/otlp/collector/metrics/v1"
	collectortracev1 "go.opentelemetry.io/proto/otlp/collector/trace/v1"

	"github.com/heimsight/heimsight/internal/otlp"
)

// handleOTLPLogs serves POST /v1/logs. Generalizes the teacher's
// protobuf-only handler to accept application/x-protobuf or
// application/json (spec.md §6's OTLP-HTTP contract), sharing the
// otlp package's decode/convert helpers with the gRPC transport.
func handleOTLPLogs(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestID(r.Context())

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ct, err := otlp.ParseContentType(r.Header.Get("Content-Type"))
		if err != nil {
			log.Printf("[%s] otlp/logs: %v", reqID, err)
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("[%s] otlp/logs: failed to read body: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		req, err := otlp.DecodeLogsRequest(body, ct)
		if err != nil {
			log.Printf("[%s] otlp/logs: decode failed: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		records, result := otlp.ConvertLogs(req)
		if len(records) > 0 {
			if err := backend.Logs().InsertLogs(r.Context(), records); err != nil {
				log.Printf("[%s] otlp/logs: storage unavailable: %v", reqID, err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}

		log.Printf("[%s] otlp/logs: accepted %d, rejected %d", reqID, result.Accepted, result.Rejected)

		resp := &collectorlogsv1.ExportLogsServiceResponse{}
		if result.HasRejections() {
			resp.PartialSuccess = &collectorlogsv1.ExportLogsPartialSuccess{
				RejectedLogRecords: int64(result.Rejected),
				ErrorMessage:       result.ErrorMessage(),
			}
		}

		respBytes, err := otlp.MarshalResponse(resp, ct)
		if err != nil {
			log.Printf("[%s] BUG: otlp/logs: failed to marshal response: %v", reqID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeOTLPResponse(w, ct, respBytes)
	}
}

func handleOTLPMetrics(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestID(r.Context())

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ct, err := otlp.ParseContentType(r.Header.Get("Content-Type"))
		if err != nil {
			log.Printf("[%s] otlp/metrics: %v", reqID, err)
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("[%s] otlp/metrics: failed to read body: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		req, err := otlp.DecodeMetricsRequest(body, ct)
		if err != nil {
			log.Printf("[%s] otlp/metrics: decode failed: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		metrics, result := otlp.ConvertMetrics(req)
		if len(metrics) > 0 {
			if err := backend.Metrics().InsertMetrics(r.Context(), metrics); err != nil {
				log.Printf("[%s] otlp/metrics: storage unavailable: %v", reqID, err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}

		log.Printf("[%s] otlp/metrics: accepted %d, rejected %d", reqID, result.Accepted, result.Rejected)

		resp := &collectormetricsv1.ExportMetricsServiceResponse{}
		if result.HasRejections() {
			resp.PartialSuccess = &collectormetricsv1.ExportMetricsPartialSuccess{
				RejectedDataPoints: int64(result.Rejected),
				ErrorMessage:       result.ErrorMessage(),
			}
		}

		respBytes, err := otlp.MarshalResponse(resp, ct)
		if err != nil {
			log.Printf("[%s] BUG: otlp/metrics: failed to marshal response: %v", reqID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeOTLPResponse(w, ct, respBytes)
	}
}

func handleOTLPTraces(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestID(r.Context())

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		ct, err := otlp.ParseContentType(r.Header.Get("Content-Type"))
		if err != nil {
			log.Printf("[%s] otlp/traces: %v", reqID, err)
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Printf("[%s] otlp/traces: failed to read body: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		req, err := otlp.DecodeTraceRequest(body, ct)
		if err != nil {
			log.Printf("[%s] otlp/traces: decode failed: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		spans, result := otlp.ConvertTraces(req)
		if len(spans) > 0 {
			if err := backend.Traces().InsertSpans(r.Context(), spans); err != nil {
				log.Printf("[%s] otlp/traces: storage unavailable: %v", reqID, err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}

		log.Printf("[%s] otlp/traces: accepted %d, rejected %d", reqID, result.Accepted, result.Rejected)

		resp := &collectortracev1.ExportTraceServiceResponse{}
		if result.HasRejections() {
			resp.PartialSuccess = &collectortracev1.ExportTracePartialSuccess{
				RejectedSpans: int64(result.Rejected),
				ErrorMessage:  result.ErrorMessage(),
			}
		}

		respBytes, err := otlp.MarshalResponse(resp, ct)
		if err != nil {
			log.Printf("[%s] BUG: otlp/traces: failed to marshal response: %v", reqID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeOTLPResponse(w, ct, respBytes)
	}
}

func writeOTLPResponse(w http.ResponseWriter, ct otlp.ContentType, body []byte) {
	if ct == otlp.ContentTypeJSON {
		w.Header().Set("Content-Type", "application/json")
	} else {
		w.Header().Set("Content-Type", "application/x-protobuf")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
