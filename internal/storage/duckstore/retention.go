package duckstore

import (
	"context"
	"fmt"
	"time"
)

// SetTableTTL implements retention.TableTTLSetter: DuckDB has no
// ClickHouse-shaped "ALTER TABLE ... MODIFY TTL", so the "ALTER" step
// spec.md §4.4 describes is the closest DuckDB-expressible equivalent —
// a DELETE sweep against the cutoff computed from the requested
// ttlDays, issued immediately rather than declared as a standing
// clause. internal/retention issues this on every policy change; nothing
// re-issues it between changes, so rows that pass the cutoff after a
// change stay in the table until the next policy change.
func (s *Storage) SetTableTTL(ctx context.Context, table string, ttlDays int) error {
	col, nanos := ttlColumn(table)
	cutoff := time.Now().Add(-time.Duration(ttlDays) * 24 * time.Hour)

	var arg int64
	if nanos {
		arg = cutoff.UnixNano()
	} else {
		arg = cutoff.Unix()
	}

	_, err := s.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s < ?", table, col), arg)
	if err != nil {
		return NewInfrastructureError(fmt.Sprintf("set ttl on %s", table), err)
	}
	return nil
}

// ttlColumn returns the time column for a raw or aggregate table and
// whether that column is nanosecond-resolution (raw tables) or
// second-resolution (aggregate tables, whose bucket column is a Unix
// second truncated to the tier's window).
func ttlColumn(table string) (col string, nanos bool) {
	switch table {
	case "spans":
		return "start_time", true
	case "logs", "metrics":
		return "timestamp", true
	default:
		return "bucket", false
	}
}
