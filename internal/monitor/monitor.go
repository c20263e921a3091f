// Package monitor implements spec.md §4.5: periodic observation (never
// mutation) of how old the oldest row per data type is, so an operator
// can see retention drifting before it becomes a storage problem.
// Grounded on the teacher's StartCleanupWorker ticker-plus-
// context-cancellation shape, generalized from "delete old rows" to
// "observe and warn."
package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/heimsight/heimsight/internal/model"
)

// AgeSource reports the age distribution for one data type's backing
// store. storage.LogStore/MetricStore/TraceStore's adapters (memstore
// and duckstore alike) all satisfy this via their OldestNewestCount
// method.
type AgeSource interface {
	OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error)
}

// PolicyLookup is the subset of retention.Controller the monitor needs.
type PolicyLookup interface {
	Get() model.RetentionConfig
}

// DefaultInterval is the default observation cadence (spec.md §4.5).
const DefaultInterval = time.Hour

// Monitor periodically snapshots DataAgeMetrics for logs, metrics and
// traces, caching the result for GET /api/v1/config/retention/metrics
// and logging a warning when a data type's oldest row has outlived its
// TTL by more than 10%.
type Monitor struct {
	logs    AgeSource
	metrics AgeSource
	traces  AgeSource
	policy  PolicyLookup

	interval time.Duration

	mu    sync.RWMutex
	cache map[model.DataType]model.DataAgeMetrics
}

// New creates a Monitor. interval <= 0 uses DefaultInterval.
func New(logs, metrics, traces AgeSource, policy PolicyLookup, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		logs: logs, metrics: metrics, traces: traces, policy: policy,
		interval: interval,
		cache:    make(map[model.DataType]model.DataAgeMetrics),
	}
}

// Run samples immediately, then on every tick until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.sampleAll(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sampleAll(ctx)
		}
	}
}

// Snapshot returns the most recently cached metrics for a data type.
func (m *Monitor) Snapshot(dt model.DataType) model.DataAgeMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cache[dt]
}

func (m *Monitor) sampleAll(ctx context.Context) {
	cfg := m.policy.Get()
	m.sampleOne(ctx, model.DataTypeLogs, m.logs, cfg.Logs.TTLDays)
	m.sampleOne(ctx, model.DataTypeMetrics, m.metrics, cfg.Metrics.TTLDays)
	m.sampleOne(ctx, model.DataTypeTraces, m.traces, cfg.Traces.TTLDays)
}

func (m *Monitor) sampleOne(ctx context.Context, dt model.DataType, src AgeSource, ttlDays int) {
	metrics, err := src.OldestNewestCount(ctx)
	if err != nil {
		log.Printf("monitor: %s age query failed: %v", dt, err)
		return
	}

	m.mu.Lock()
	m.cache[dt] = metrics
	m.mu.Unlock()

	if metrics.OldestTS == nil {
		return
	}
	age := time.Duration(time.Now().UnixNano()-*metrics.OldestTS) * time.Nanosecond
	grace := time.Duration(float64(ttlDays)*1.1*24) * time.Hour
	if age > grace {
		log.Printf("monitor: %s oldest row is %s old, exceeding ttl_days=%d by more than 10%%", dt, age.Round(time.Hour), ttlDays)
	}
}
