// Package retention owns the runtime-mutable RetentionConfig and drives
// the backend TTL update protocol described in spec.md §4.4, grounded
// on the teacher's CleanupConfig/cleanupRunning semaphore in its
// storage package's retention.go — restructured from static-at-startup
// config into a lock-guarded, runtime-updatable one.
package retention

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/heimsight/heimsight/internal/aggregation"
	"github.com/heimsight/heimsight/internal/model"
)

// TTLErrorCode classifies a control-plane failure (spec.md §7).
type TTLErrorCode string

const (
	CodeValidation   TTLErrorCode = "TTL_VALIDATION"
	CodeAlterFailed  TTLErrorCode = "TTL_ALTER_FAILED"
	CodeRollbackFail TTLErrorCode = "TTL_ROLLBACK_FAILED"
)

// TTLError is returned by UpdatePolicy/UpdateConfig on failure.
type TTLError struct {
	Code     TTLErrorCode
	DataType model.DataType
	Cause    error
}

func (e *TTLError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.DataType, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.DataType)
}

func (e *TTLError) Unwrap() error { return e.Cause }

// TableTTLSetter issues (or reverses) a TTL change against one table.
// duckstore's DELETE-sweep backend and any future backend both satisfy
// this with a single method.
type TableTTLSetter interface {
	SetTableTTL(ctx context.Context, table string, ttlDays int) error
}

// Controller guards the live RetentionConfig and applies TTL changes to
// the backend. The teacher's config was read once at process start;
// spec.md §4.4 requires runtime mutation via PUT /api/v1/config/retention*,
// so every read/write here goes through the mutex.
type Controller struct {
	mu      sync.RWMutex
	config  model.RetentionConfig
	backend TableTTLSetter
}

// New creates a Controller with the spec.md §3 default policy.
func New(backend TableTTLSetter) *Controller {
	return &Controller{config: model.DefaultRetentionConfig(), backend: backend}
}

// Get returns the current config.
func (c *Controller) Get() model.RetentionConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// UpdatePolicy implements spec.md §4.4's per-policy update protocol:
// validate, ALTER every table rooted at the data type (raw + aggregate
// tiers), rolling back on partial failure, then swap only on success.
func (c *Controller) UpdatePolicy(ctx context.Context, policy model.RetentionPolicy) error {
	if err := policy.Validate(); err != nil {
		return &TTLError{Code: CodeValidation, DataType: policy.DataType, Cause: err}
	}

	c.mu.RLock()
	prior := c.config.Get(policy.DataType)
	c.mu.RUnlock()

	rawTable := aggregation.TableForDataType(policy.DataType)
	tiers := tierTargets(rawTable)
	tables := append([]string{rawTable}, tiers...)

	applied := 0
	if err := c.backend.SetTableTTL(ctx, rawTable, policy.TTLDays); err != nil {
		return &TTLError{Code: CodeAlterFailed, DataType: policy.DataType, Cause: err}
	}
	applied++

	for _, tier := range tiers {
		if err := c.backend.SetTableTTL(ctx, tier, policy.TTLDays); err != nil {
			if rbErr := c.rollback(ctx, tables[:applied], prior.TTLDays); rbErr != nil {
				c.mu.Lock()
				c.config = c.config.With(model.RetentionPolicy{
					DataType: policy.DataType, TTLDays: prior.TTLDays, Inconsistent: true,
				})
				c.mu.Unlock()
				log.Printf("retention: rollback failed for %s after alter failure on %s: %v", policy.DataType, tier, rbErr)
				return &TTLError{Code: CodeRollbackFail, DataType: policy.DataType, Cause: rbErr}
			}
			return &TTLError{Code: CodeAlterFailed, DataType: policy.DataType, Cause: err}
		}
		applied++
	}

	c.mu.Lock()
	c.config = c.config.With(policy)
	c.mu.Unlock()
	return nil
}

func (c *Controller) rollback(ctx context.Context, tables []string, priorTTL int) error {
	for _, t := range tables {
		if err := c.backend.SetTableTTL(ctx, t, priorTTL); err != nil {
			return fmt.Errorf("rollback %s: %w", t, err)
		}
	}
	return nil
}

// UpdateConfig applies a full RetentionConfig one data type at a time,
// in the fixed order logs, metrics, traces (spec.md §4.4), stopping at
// the first failure while keeping prior successes in place.
func (c *Controller) UpdateConfig(ctx context.Context, cfg model.RetentionConfig) error {
	for _, p := range []model.RetentionPolicy{cfg.Logs, cfg.Metrics, cfg.Traces} {
		if err := c.UpdatePolicy(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func tierTargets(rawTable string) []string {
	tiers := aggregation.TiersFor(rawTable)
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[i] = t.TargetTable
	}
	return out
}
