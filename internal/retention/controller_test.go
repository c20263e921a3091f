package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/stretchr/testify/require"
)

// fakeSetter records SetTableTTL calls and can be told to fail on a
// specific table (always, or only on its Nth call) to exercise
// UpdatePolicy's apply-then-rollback protocol.
type fakeSetter struct {
	calls         []string
	failOn        map[string]bool
	failOnNthCall map[string]int
	callCount     map[string]int
	applied       map[string]int
}

func newFakeSetter() *fakeSetter {
	return &fakeSetter{
		failOn:        map[string]bool{},
		failOnNthCall: map[string]int{},
		callCount:     map[string]int{},
		applied:       map[string]int{},
	}
}

func (f *fakeSetter) SetTableTTL(_ context.Context, table string, ttlDays int) error {
	f.calls = append(f.calls, table)
	f.callCount[table]++
	if f.failOn[table] {
		return errors.New("boom")
	}
	if n, ok := f.failOnNthCall[table]; ok && f.callCount[table] == n {
		return errors.New("boom")
	}
	f.applied[table] = ttlDays
	return nil
}

func TestUpdatePolicy_RejectsInvalidTTL(t *testing.T) {
	ctrl := New(newFakeSetter())
	err := ctrl.UpdatePolicy(context.Background(), model.RetentionPolicy{DataType: model.DataTypeLogs, TTLDays: 0})
	require.Error(t, err)
	var ttlErr *TTLError
	require.ErrorAs(t, err, &ttlErr)
	require.Equal(t, CodeValidation, ttlErr.Code)
}

func TestUpdatePolicy_AppliesToRawAndAggregateTiers(t *testing.T) {
	setter := newFakeSetter()
	ctrl := New(setter)

	err := ctrl.UpdatePolicy(context.Background(), model.RetentionPolicy{DataType: model.DataTypeMetrics, TTLDays: 7})
	require.NoError(t, err)

	require.Equal(t, 7, setter.applied["metrics"])
	require.Equal(t, 7, setter.applied["metrics_1min"])
	require.Equal(t, 7, setter.applied["metrics_1day"])
	require.Equal(t, model.DataTypeMetrics, ctrl.Get().Metrics.DataType)
	require.Equal(t, 7, ctrl.Get().Metrics.TTLDays)
}

func TestUpdatePolicy_RollsBackOnTierFailure(t *testing.T) {
	setter := newFakeSetter()
	setter.failOn["metrics_1day"] = true
	ctrl := New(setter)

	prior := ctrl.Get().Metrics.TTLDays
	err := ctrl.UpdatePolicy(context.Background(), model.RetentionPolicy{DataType: model.DataTypeMetrics, TTLDays: 7})
	require.Error(t, err)
	var ttlErr *TTLError
	require.ErrorAs(t, err, &ttlErr)
	require.Equal(t, CodeAlterFailed, ttlErr.Code)

	// Config is unchanged on failure (Testable Property 4).
	require.Equal(t, prior, ctrl.Get().Metrics.TTLDays)
	// Rollback restored the raw table and every tier applied before the failure.
	require.Equal(t, prior, setter.applied["metrics"])
}

func TestUpdatePolicy_RollbackFailureMarksInconsistent(t *testing.T) {
	setter := newFakeSetter()
	setter.failOn["metrics_1hour"] = true  // fails partway through the tier loop
	setter.failOnNthCall["metrics"] = 2    // succeeds on forward apply, fails on rollback
	ctrl := New(setter)

	err := ctrl.UpdatePolicy(context.Background(), model.RetentionPolicy{DataType: model.DataTypeMetrics, TTLDays: 7})
	require.Error(t, err)
	var ttlErr *TTLError
	require.ErrorAs(t, err, &ttlErr)
	require.Equal(t, CodeRollbackFail, ttlErr.Code)
	require.True(t, ctrl.Get().Metrics.Inconsistent)
}

// slowSetter blocks on its first SetTableTTL call until released,
// simulating a slow ALTER TABLE so a concurrent Get() can be observed
// while UpdatePolicy's I/O is in flight.
type slowSetter struct {
	release chan struct{}
	entered chan struct{}
}

func newSlowSetter() *slowSetter {
	return &slowSetter{release: make(chan struct{}), entered: make(chan struct{}, 1)}
}

func (s *slowSetter) SetTableTTL(_ context.Context, _ string, _ int) error {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	<-s.release
	return nil
}

func TestUpdatePolicy_DoesNotHoldLockAcrossBackendIO(t *testing.T) {
	setter := newSlowSetter()
	ctrl := New(setter)

	done := make(chan error, 1)
	go func() {
		done <- ctrl.UpdatePolicy(context.Background(), model.RetentionPolicy{DataType: model.DataTypeMetrics, TTLDays: 7})
	}()

	select {
	case <-setter.entered:
	case <-time.After(time.Second):
		t.Fatal("UpdatePolicy never reached the backend call")
	}

	getDone := make(chan model.RetentionConfig, 1)
	go func() { getDone <- ctrl.Get() }()

	select {
	case <-getDone:
	case <-time.After(time.Second):
		t.Fatal("Get() blocked while backend I/O was in flight — the lock is held across SetTableTTL")
	}

	close(setter.release)
	require.NoError(t, <-done)
}

func TestUpdateConfig_StopsAtFirstFailure(t *testing.T) {
	setter := newFakeSetter()
	setter.failOn["metrics"] = true
	ctrl := New(setter)

	cfg := model.DefaultRetentionConfig()
	cfg.Logs.TTLDays = 15
	cfg.Metrics.TTLDays = 15
	cfg.Traces.TTLDays = 15

	err := ctrl.UpdateConfig(context.Background(), cfg)
	require.Error(t, err)
	require.Equal(t, 15, ctrl.Get().Logs.TTLDays) // logs applied before metrics failed
	require.NotEqual(t, 15, ctrl.Get().Traces.TTLDays) // traces never reached
}
