package duckstore

import "github.com/marcboeker/go-duckdb"

// toDuckMap converts a plain Go string map (as produced by
// internal/otlp's attribute flattening, or the native REST API) into
// the duckdb.Map type the Appender's MAP(VARCHAR, VARCHAR) columns
// require. The teacher's flatten.go did this directly against OTLP
// AnyValues; that stringification now lives in internal/otlp, one
// layer up, so every ingestion path agrees on it regardless of backend.
func toDuckMap(m map[string]string) duckdb.Map {
	if len(m) == 0 {
		return nil
	}
	out := make(duckdb.Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
