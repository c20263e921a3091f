package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/heimsight/heimsight/internal/otlp"
	"github.com/heimsight/heimsight/internal/query"
	"github.com/heimsight/heimsight/internal/retention"
	"github.com/heimsight/heimsight/internal/storage/duckstore"
)

// writeError maps a typed internal error to an HTTP status and a
// structured JSON body, implementing spec.md §7's taxonomy at the
// transport boundary: request-level and query-parse errors are 400,
// control-plane TTL failures are 500 with their code, store I/O is
// 503/500 depending on whether the backend itself is unreachable.
func writeError(w http.ResponseWriter, err error) {
	status, body := classifyError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func classifyError(err error) (int, map[string]any) {
	// TTLError is checked first: it wraps a ValidationError for
	// TTL_VALIDATION, which must still surface as a 500 with its code.
	var ttlErr *retention.TTLError
	if errors.As(err, &ttlErr) {
		return http.StatusInternalServerError, map[string]any{
			"code": string(ttlErr.Code), "data_type": string(ttlErr.DataType), "error": ttlErr.Error(),
		}
	}

	var valErr *model.ValidationError
	if errors.As(err, &valErr) {
		return http.StatusBadRequest, map[string]any{"error": valErr.Error()}
	}

	var parseErr *query.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusBadRequest, map[string]any{
			"line": parseErr.Line, "column": parseErr.Column, "message": parseErr.Message,
		}
	}

	var unknownTable *query.UnknownTableError
	if errors.As(err, &unknownTable) {
		return http.StatusBadRequest, map[string]any{"error": unknownTable.Error()}
	}
	var unknownColumn *query.UnknownColumnError
	if errors.As(err, &unknownColumn) {
		return http.StatusBadRequest, map[string]any{"error": unknownColumn.Error()}
	}

	var decodeErr *otlp.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest, map[string]any{"error": decodeErr.Error()}
	}

	var storeErr *duckstore.StorageError
	if errors.As(err, &storeErr) {
		if storeErr.Type == duckstore.ErrorTypeInfrastructure {
			return http.StatusServiceUnavailable, map[string]any{"error": storeErr.Error()}
		}
		return http.StatusInternalServerError, map[string]any{"error": storeErr.Error()}
	}

	return http.StatusInternalServerError, map[string]any{"error": err.Error()}
}
