package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/heimsight/heimsight/internal/model"
)

// handleLogsCollection dispatches POST/GET on /api/v1/logs.
func handleLogsCollection(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlePostLogs(backend)(w, r)
		case http.MethodGet:
			handleGetLogs(backend)(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// handlePostLogs accepts a single LogRecord or a JSON array of them
// (spec.md §6), running the same per-record validation/partial-success
// bookkeeping the OTLP path uses so batch ingest never lets one bad
// record sink the whole request (Testable Property 1).
func handlePostLogs(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestID(r.Context())
		w.Header().Set("Content-Type", "application/json")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to read body"})
			return
		}

		records, err := decodeBatch[model.LogRecord](body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "malformed JSON body"})
			return
		}

		var accepted []*model.LogRecord
		var errs []string
		for _, rec := range records {
			rec := rec
			if err := rec.Validate(); err != nil {
				errs = append(errs, err.Error())
				continue
			}
			accepted = append(accepted, &rec)
		}

		if len(accepted) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"errors": errs})
			return
		}

		if err := backend.Logs().InsertLogs(r.Context(), accepted); err != nil {
			log.Printf("[%s] logs: insert failed: %v", reqID, err)
			writeError(w, err)
			return
		}

		status := http.StatusCreated
		resp := map[string]any{"accepted": len(accepted), "rejected": len(errs)}
		if len(errs) > 0 {
			resp["errors"] = errs
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}

// handleGetLogs filters the logs table with the REST query parameters
// (spec.md §6: start_time, end_time, level, service, contains, limit, offset).
func handleGetLogs(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel := buildSelect("logs", r.URL.Query())
		records, total, err := backend.Logs().QueryLogs(r.Context(), sel)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			writeError(w, err)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"logs": records, "total": total})
	}
}

// decodeBatch decodes body as either a single T or a JSON array of T,
// matching spec.md §6's "body = X or [X]" shape across logs, metrics
// and traces ingest.
func decodeBatch[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var batch []T
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	var single T
	if err := json.Unmarshal(trimmed, &single); err != nil {
		return nil, err
	}
	return []T{single}, nil
}
