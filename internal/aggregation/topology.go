// Package aggregation owns the fixed materialized-view topology and the
// log-message normalization function that feeds the logs_*_counts tiers
// (spec.md §4.4).
package aggregation

import "github.com/heimsight/heimsight/internal/model"

// Topology is the fixed downsampling DAG, restated verbatim from
// spec.md §4.4's table as Go data. It never changes at runtime; the
// retention controller applies TTLs to these tables but never adds or
// removes a tier.
var Topology = []model.AggregationTier{
	{
		SourceTable: "metrics", TargetTable: "metrics_1min", Bucket: model.Bucket1Min, TTLDays: 30,
		Aggregations: []string{"count", "sum", "min", "max", "avg"},
	},
	{
		SourceTable: "metrics", TargetTable: "metrics_5min", Bucket: model.Bucket5Min, TTLDays: 90,
		Aggregations: []string{"count", "sum", "min", "max", "avg"},
	},
	{
		SourceTable: "metrics", TargetTable: "metrics_1hour", Bucket: model.Bucket1Hour, TTLDays: 365,
		Aggregations: []string{"count", "sum", "min", "max", "avg"},
	},
	{
		SourceTable: "metrics", TargetTable: "metrics_1day", Bucket: model.Bucket1Day, TTLDays: 730,
		Aggregations: []string{"count", "sum", "min", "max", "avg"},
	},
	{
		SourceTable: "logs", TargetTable: "logs_1hour_counts", Bucket: model.Bucket1Hour, TTLDays: 365,
		Aggregations: []string{"count"},
	},
	{
		SourceTable: "logs", TargetTable: "logs_1day_counts", Bucket: model.Bucket1Day, TTLDays: 730,
		Aggregations: []string{"count"},
	},
	{
		SourceTable: "spans", TargetTable: "spans_1hour_stats", Bucket: model.Bucket1Hour, TTLDays: 365,
		Aggregations: []string{"count", "avg", "min", "max", "p50", "p95", "p99"},
	},
	{
		SourceTable: "spans", TargetTable: "spans_1day_stats", Bucket: model.Bucket1Day, TTLDays: 730,
		Aggregations: []string{"count", "avg", "min", "max", "p50", "p95", "p99"},
	},
	{
		SourceTable: "spans", TargetTable: "traces_1hour_stats", Bucket: model.Bucket1Hour, TTLDays: 365,
		Aggregations: []string{"count", "avg", "p50", "p95", "p99"},
	},
	{
		SourceTable: "spans", TargetTable: "traces_1day_stats", Bucket: model.Bucket1Day, TTLDays: 730,
		Aggregations: []string{"count", "avg", "p50", "p95", "p99"},
	},
}

// TiersFor returns every tier rooted at the given raw table, in the
// order listed in Topology. The retention controller uses this to issue
// one TTL change per inheriting tier (spec.md §4.4 step 2).
func TiersFor(sourceTable string) []model.AggregationTier {
	var out []model.AggregationTier
	for _, t := range Topology {
		if t.SourceTable == sourceTable {
			out = append(out, t)
		}
	}
	return out
}

// TableForDataType maps a retention data type to its raw table name.
func TableForDataType(dt model.DataType) string {
	switch dt {
	case model.DataTypeMetrics:
		return "metrics"
	case model.DataTypeTraces:
		return "spans"
	default:
		return "logs"
	}
}
