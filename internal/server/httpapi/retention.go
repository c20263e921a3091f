package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/monitor"
	"github.com/heimsight/heimsight/internal/retention"
)

// handleRetentionConfig serves GET/PUT /api/v1/config/retention.
func handleRetentionConfig(ctrl *retention.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(ctrl.Get())
		case http.MethodPut:
			var cfg model.RetentionConfig
			if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{"error": "malformed JSON body"})
				return
			}
			if err := ctrl.UpdateConfig(r.Context(), cfg); err != nil {
				writeError(w, err)
				return
			}
			json.NewEncoder(w).Encode(ctrl.Get())
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// handleRetentionPolicy serves PUT /api/v1/config/retention/policy
// (spec.md Testable Property 4: the GET reflects the new value only on
// success, and the prior value otherwise).
func handleRetentionPolicy(ctrl *retention.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var policy model.RetentionPolicy
		if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "malformed JSON body"})
			return
		}

		if err := ctrl.UpdatePolicy(r.Context(), policy); err != nil {
			writeError(w, err)
			return
		}
		json.NewEncoder(w).Encode(ctrl.Get())
	}
}

// handleRetentionMetrics serves GET /api/v1/config/retention/metrics,
// backed by the data-age monitor's cache (spec.md §4.5/Testable
// Property 8: oldest_ts/newest_ts are null exactly when count is 0).
func handleRetentionMetrics(mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		json.NewEncoder(w).Encode(map[string]model.DataAgeMetrics{
			"logs":    mon.Snapshot(model.DataTypeLogs),
			"metrics": mon.Snapshot(model.DataTypeMetrics),
			"traces":  mon.Snapshot(model.DataTypeTraces),
		})
	}
}
