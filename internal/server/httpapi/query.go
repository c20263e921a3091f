package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/heimsight/heimsight/internal/query"
	"github.com/heimsight/heimsight/internal/storage"
)

type queryRequest struct {
	Query string `json:"query"`
}

// handleQuery implements POST /api/v1/query (spec.md §4.3/§6): parse,
// execute in pushdown mode when the backend owns the table and supports
// it, otherwise fall back to native row-walk evaluation, and echo the
// AST in the response for transparency.
func handleQuery(backend Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{"error": "malformed JSON body"})
			return
		}

		sel, err := query.Parse(req.Query)
		if err != nil {
			writeError(w, err)
			return
		}

		rows, total, err := runSelect(r.Context(), backend, sel)
		if err != nil {
			writeError(w, err)
			return
		}

		json.NewEncoder(w).Encode(map[string]any{
			"ast":           sel.String(),
			"rows":          rows,
			"row_count":     len(rows),
			"total_matched": total,
		})
	}
}

// runSelect executes sel against backend, preferring SQL pushdown for
// tables the column store owns outright (spec.md §4.3's pushdown mode)
// and falling back to the per-signal native query path otherwise —
// the only mode memstore ever satisfies, and the only mode available
// for aggregate tiers a backend doesn't expose through SQLStore.
func runSelect(ctx context.Context, backend Backend, sel *query.Select) ([]map[string]any, int, error) {
	if !query.KnownTable(sel.From) {
		return nil, 0, &query.UnknownTableError{Table: sel.From}
	}

	if sqlStore, ok := backend.(storage.SQLStore); ok && query.PushdownOwned[sel.From] {
		return sqlStore.QuerySQL(ctx, sel)
	}

	switch sel.From {
	case "logs":
		records, total, err := backend.Logs().QueryLogs(ctx, sel)
		if err != nil {
			return nil, 0, err
		}
		rows, err := toRows(records)
		return rows, total, err
	case "metrics":
		metrics, total, err := backend.Metrics().QueryMetrics(ctx, sel)
		if err != nil {
			return nil, 0, err
		}
		rows, err := toRows(metrics)
		return rows, total, err
	case "spans":
		spans, total, err := backend.Traces().QuerySpans(ctx, sel)
		if err != nil {
			return nil, 0, err
		}
		rows, err := toRows(spans)
		return rows, total, err
	default:
		return nil, 0, &query.UnknownTableError{Table: sel.From}
	}
}

// toRows converts a slice of model records into generic JSON-object
// rows so the query response can carry logs, metrics, spans and
// backend-native aggregate rows through the same shape.
func toRows[T any](records []T) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		blob, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		var row map[string]any
		if err := json.Unmarshal(blob, &row); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}
