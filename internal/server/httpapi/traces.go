package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/heimsight/heimsight/internal/model"
)

func handleTracesCollection(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlePostSpans(backend)(w, r)
		case http.MethodGet:
			handleGetTraces(backend)(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func handlePostSpans(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestID(r.Context())
		w.Header().Set("Content-Type", "application/json")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to read body"})
			return
		}

		batch, err := decodeBatch[model.Span](body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "malformed JSON body"})
			return
		}

		var accepted []*model.Span
		var errs []string
		for _, sp := range batch {
			sp := sp
			if err := sp.Validate(); err != nil {
				errs = append(errs, err.Error())
				continue
			}
			accepted = append(accepted, &sp)
		}

		if len(accepted) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"errors": errs})
			return
		}

		if err := backend.Traces().InsertSpans(r.Context(), accepted); err != nil {
			log.Printf("[%s] traces: insert failed: %v", reqID, err)
			writeError(w, err)
			return
		}

		resp := map[string]any{"accepted": len(accepted), "rejected": len(errs)}
		if len(errs) > 0 {
			resp["errors"] = errs
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(resp)
	}
}

// handleGetTraces filters spans (spec.md §6: service, min/max_duration_ns,
// status, start_time, end_time, limit, offset) and groups the matches
// into traces by trace_id, since the route returns "grouped traces"
// rather than a flat span list. total is the number of traces returned.
func handleGetTraces(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel := buildSelect("spans", r.URL.Query())
		spans, _, err := backend.Traces().QuerySpans(r.Context(), sel)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			writeError(w, err)
			return
		}

		byTrace := make(map[string][]*model.Span)
		var order []string
		for _, sp := range spans {
			if _, ok := byTrace[sp.TraceID]; !ok {
				order = append(order, sp.TraceID)
			}
			byTrace[sp.TraceID] = append(byTrace[sp.TraceID], sp)
		}

		traces := make([]*model.Trace, 0, len(order))
		for _, id := range order {
			traces = append(traces, model.BuildTrace(id, byTrace[id]))
		}

		json.NewEncoder(w).Encode(map[string]any{"traces": traces, "total": len(traces)})
	}
}

// handleGetTraceByID serves GET /api/v1/traces/{trace_id}.
func handleGetTraceByID(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		traceID := strings.TrimPrefix(r.URL.Path, "/api/v1/traces/")
		w.Header().Set("Content-Type", "application/json")
		if traceID == "" {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "trace id required"})
			return
		}

		trace, err := backend.Traces().GetTrace(r.Context(), traceID)
		if err != nil {
			writeError(w, err)
			return
		}
		if trace == nil {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "trace not found"})
			return
		}
		json.NewEncoder(w).Encode(trace)
	}
}
