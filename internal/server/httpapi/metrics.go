package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/heimsight/heimsight/internal/model"
)

func handleMetricsCollection(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			handlePostMetrics(backend)(w, r)
		case http.MethodGet:
			handleGetMetrics(backend)(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

func handlePostMetrics(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := RequestID(r.Context())
		w.Header().Set("Content-Type", "application/json")

		body, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "failed to read body"})
			return
		}

		batch, err := decodeBatch[model.Metric](body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "malformed JSON body"})
			return
		}

		var accepted []*model.Metric
		var errs []string
		for _, m := range batch {
			m := m
			if err := m.Validate(); err != nil {
				errs = append(errs, err.Error())
				continue
			}
			accepted = append(accepted, &m)
		}

		if len(accepted) == 0 {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{"errors": errs})
			return
		}

		if err := backend.Metrics().InsertMetrics(r.Context(), accepted); err != nil {
			log.Printf("[%s] metrics: insert failed: %v", reqID, err)
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

// handleGetMetrics filters the metrics table (spec.md §6: name, type,
// label.<k>=<v>, start_time, end_time, limit, offset).
func handleGetMetrics(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel := buildSelect("metrics", r.URL.Query())
		metrics, total, err := backend.Metrics().QueryMetrics(r.Context(), sel)
		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			writeError(w, err)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"metrics": metrics, "total": total})
	}
}
