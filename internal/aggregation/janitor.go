package aggregation

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/heimsight/heimsight/internal/model"
)

// Janitor periodically populates each aggregation tier from its source
// table, standing in for the triggered materialized views spec.md §4.4
// assumes (DuckDB has no insert-trigger materialized view). Grounded on
// the teacher's StartCleanupWorker ticker-plus-context-cancellation
// loop and on the continuous-aggregate refresh pattern in
// saviobatista-sbs-logger's 002_retention_policies.go — this is the
// portable equivalent of that periodic refresh for a backend without
// native continuous aggregates.
type Janitor struct {
	db       *sql.DB
	interval time.Duration

	mu         sync.Mutex
	watermarks map[string]int64 // target table -> last processed source timestamp, nanoseconds
}

// DefaultInterval is the tier-refresh cadence used when the caller
// doesn't override it.
const DefaultInterval = 30 * time.Second

// NewJanitor creates a Janitor that refreshes every interval. interval
// <= 0 uses DefaultInterval.
func NewJanitor(db *sql.DB, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Janitor{db: db, interval: interval, watermarks: make(map[string]int64)}
}

// Run ticks until ctx is cancelled, refreshing every tier once per tick.
// Population is asynchronous with respect to the triggering insert —
// readers may see a lagging view, exactly as spec.md §4.4/§5 requires.
func (j *Janitor) Run(ctx context.Context) {
	j.refreshAll(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.refreshAll(ctx)
		}
	}
}

func (j *Janitor) refreshAll(ctx context.Context) {
	for _, tier := range Topology {
		if err := j.refreshTier(ctx, tier); err != nil {
			log.Printf("aggregation: refresh %s failed: %v", tier.TargetTable, err)
		}
	}
}

func (j *Janitor) refreshTier(ctx context.Context, tier model.AggregationTier) error {
	j.mu.Lock()
	since := j.watermarks[tier.TargetTable]
	j.mu.Unlock()

	stmt := renderTierInsert(tier)
	now := time.Now().UnixNano()

	if _, err := j.db.ExecContext(ctx, stmt, since); err != nil {
		return fmt.Errorf("insert into %s: %w", tier.TargetTable, err)
	}

	j.mu.Lock()
	j.watermarks[tier.TargetTable] = now
	j.mu.Unlock()
	return nil
}

// renderTierInsert builds the INSERT ... SELECT ... GROUP BY statement
// for one tier, bucketing the source table's nanosecond timestamp into
// the tier's window width. One parameter (?) is the watermark cutoff.
func renderTierInsert(tier model.AggregationTier) string {
	secs := tier.Bucket.Seconds()

	switch tier.SourceTable {
	case "metrics":
		bucket := bucketExpr("timestamp", secs)
		return fmt.Sprintf(`
INSERT INTO %s (bucket, service, name, metric_type, count, sum, min, max, avg)
SELECT %s AS bucket, service, name, metric_type,
       count(*), sum(value), min(value), max(value), avg(value)
FROM metrics
WHERE timestamp > ?
GROUP BY bucket, service, name, metric_type`, tier.TargetTable, bucket)

	case "logs":
		bucket := bucketExpr("timestamp", secs)
		return fmt.Sprintf(`
INSERT INTO %s (bucket, service, level, normalized_message, sample_message, count)
SELECT %s AS bucket, service, level, normalized_message,
       any_value(message), count(*)
FROM logs
WHERE timestamp > ?
GROUP BY bucket, service, level, normalized_message`, tier.TargetTable, bucket)

	case "spans":
		bucket := bucketExpr("start_time", secs)
		if hasPrefixJanitor(tier.TargetTable, "traces_") {
			return fmt.Sprintf(`
INSERT INTO %s (bucket, service, trace_count, avg_duration_ns, p50, p95, p99)
SELECT %s AS bucket, service,
       count(DISTINCT trace_id), avg(duration_ns),
       quantile_cont(duration_ns, 0.5), quantile_cont(duration_ns, 0.95), quantile_cont(duration_ns, 0.99)
FROM spans
WHERE start_time > ?
GROUP BY bucket, service`, tier.TargetTable, bucket)
		}
		return fmt.Sprintf(`
INSERT INTO %s (bucket, service, operation, span_kind, status_code, span_count, avg_duration_ns, min_duration_ns, max_duration_ns, p50, p95, p99)
SELECT %s AS bucket, service, operation, span_kind, status_code,
       count(*), avg(duration_ns), min(duration_ns), max(duration_ns),
       quantile_cont(duration_ns, 0.5), quantile_cont(duration_ns, 0.95), quantile_cont(duration_ns, 0.99)
FROM spans
WHERE start_time > ?
GROUP BY bucket, service, operation, span_kind, status_code`, tier.TargetTable, bucket)

	default:
		return ""
	}
}

func bucketExpr(col string, bucketSeconds int64) string {
	return fmt.Sprintf("CAST(%s / 1000000000 / %d AS BIGINT) * %d", col, bucketSeconds, bucketSeconds)
}

func hasPrefixJanitor(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
