package query

// Catalog restricts pushdown rendering to known tables/columns
// (spec.md §4.3: "Identifier allow-list restricts FROM to the known
// catalog and columns to the known schema of that table").
var Catalog = map[string]map[string]bool{
	"logs": cols("timestamp", "level", "message", "service", "trace_id", "span_id", "normalized_message"),
	"metrics": cols("timestamp", "name", "metric_type", "value", "service"),
	"spans": cols("trace_id", "span_id", "parent_span_id", "start_time", "end_time", "duration_ns",
		"name", "operation", "service", "span_kind", "status_code", "status_message"),

	"metrics_1min":  cols("bucket", "service", "name", "metric_type", "count", "sum", "min", "max", "avg"),
	"metrics_5min":  cols("bucket", "service", "name", "metric_type", "count", "sum", "min", "max", "avg"),
	"metrics_1hour": cols("bucket", "service", "name", "metric_type", "count", "sum", "min", "max", "avg"),
	"metrics_1day":  cols("bucket", "service", "name", "metric_type", "count", "sum", "min", "max", "avg"),

	"logs_1hour_counts": cols("bucket", "service", "level", "normalized_message", "sample_message", "count"),
	"logs_1day_counts":  cols("bucket", "service", "level", "normalized_message", "sample_message", "count"),

	"spans_1hour_stats": cols("bucket", "service", "operation", "span_kind", "status_code",
		"span_count", "avg_duration_ns", "min_duration_ns", "max_duration_ns", "p50", "p95", "p99"),
	"spans_1day_stats": cols("bucket", "service", "operation", "span_kind", "status_code",
		"span_count", "avg_duration_ns", "min_duration_ns", "max_duration_ns", "p50", "p95", "p99"),

	"traces_1hour_stats": cols("bucket", "service", "trace_count", "avg_duration_ns", "p50", "p95", "p99"),
	"traces_1day_stats":  cols("bucket", "service", "trace_count", "avg_duration_ns", "p50", "p95", "p99"),
}

func cols(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// KnownTable reports whether name is a queryable table.
func KnownTable(name string) bool {
	_, ok := Catalog[name]
	return ok
}

// KnownColumn reports whether column exists on table.
func KnownColumn(table, column string) bool {
	cols, ok := Catalog[table]
	if !ok {
		return false
	}
	return cols[column]
}

// MapColumn names, per table, the MAP(VARCHAR, VARCHAR) column that
// backs arbitrary label/attribute filters not covered by Catalog's flat
// allow-list — e.g. GET /api/v1/metrics?label.<k>=<v> (spec.md §6).
// Conditions against a field absent from Catalog[table] but present in
// MapColumn render as a map lookup instead of UnknownColumnError.
var MapColumn = map[string]string{
	"metrics": "labels",
}

// PushdownOwned is the set of tables the columnar backend owns outright
// (as opposed to memstore-owned tables evaluated in native mode).
var PushdownOwned = map[string]bool{
	"logs": true, "metrics": true, "spans": true,
	"metrics_1min": true, "metrics_5min": true, "metrics_1hour": true, "metrics_1day": true,
	"logs_1hour_counts": true, "logs_1day_counts": true,
	"spans_1hour_stats": true, "spans_1day_stats": true,
	"traces_1hour_stats": true, "traces_1day_stats": true,
}
