package aggregation

import (
	"strings"
	"testing"
	"time"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/stretchr/testify/require"
)

func TestBucketExpr(t *testing.T) {
	require.Equal(t, "CAST(timestamp / 1000000000 / 3600 AS BIGINT) * 3600", bucketExpr("timestamp", 3600))
}

func TestHasPrefixJanitor(t *testing.T) {
	require.True(t, hasPrefixJanitor("traces_1hour_stats", "traces_"))
	require.False(t, hasPrefixJanitor("spans_1hour_stats", "traces_"))
	require.False(t, hasPrefixJanitor("tr", "traces_"))
}

func TestRenderTierInsert_Metrics(t *testing.T) {
	tier := model.AggregationTier{SourceTable: "metrics", TargetTable: "metrics_1min", Bucket: model.Bucket1Min}
	stmt := renderTierInsert(tier)
	require.Contains(t, stmt, "INSERT INTO metrics_1min")
	require.Contains(t, stmt, "FROM metrics")
	require.Contains(t, stmt, "GROUP BY bucket, service, name, metric_type")
	require.Contains(t, stmt, "WHERE timestamp > ?")
}

func TestRenderTierInsert_Logs(t *testing.T) {
	tier := model.AggregationTier{SourceTable: "logs", TargetTable: "logs_1hour_counts", Bucket: model.Bucket1Hour}
	stmt := renderTierInsert(tier)
	require.Contains(t, stmt, "INSERT INTO logs_1hour_counts")
	require.Contains(t, stmt, "any_value(message)")
	require.Contains(t, stmt, "GROUP BY bucket, service, level, normalized_message")
}

func TestRenderTierInsert_SpansStatsVsTracesStats(t *testing.T) {
	spanTier := model.AggregationTier{SourceTable: "spans", TargetTable: "spans_1hour_stats", Bucket: model.Bucket1Hour}
	spanStmt := renderTierInsert(spanTier)
	require.Contains(t, spanStmt, "operation")
	require.Contains(t, spanStmt, "span_kind")

	traceTier := model.AggregationTier{SourceTable: "spans", TargetTable: "traces_1hour_stats", Bucket: model.Bucket1Hour}
	traceStmt := renderTierInsert(traceTier)
	require.Contains(t, traceStmt, "count(DISTINCT trace_id)")
	require.NotContains(t, traceStmt, "span_kind")
}

func TestRenderTierInsert_UnknownSourceIsEmpty(t *testing.T) {
	tier := model.AggregationTier{SourceTable: "unknown", TargetTable: "x", Bucket: model.Bucket1Min}
	require.Empty(t, renderTierInsert(tier))
}

// A nil *sql.DB is enough to exercise NewJanitor's interval defaulting
// without touching a real connection.
func TestNewJanitor_DefaultsInterval(t *testing.T) {
	j := NewJanitor(nil, 0)
	require.Equal(t, DefaultInterval, j.interval)

	j2 := NewJanitor(nil, 5*time.Minute)
	require.Equal(t, 5*time.Minute, j2.interval)
}

func TestRenderTierInsert_WatermarkParamPlaceholderCount(t *testing.T) {
	for _, tier := range Topology {
		stmt := renderTierInsert(tier)
		require.Equal(t, 1, strings.Count(stmt, "?"), "tier %s should have exactly one watermark parameter", tier.TargetTable)
	}
}
