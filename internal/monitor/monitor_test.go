package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/heimsight/heimsight/internal/model"
	"github.com/stretchr/testify/require"
)

type fakeAgeSource struct {
	metrics model.DataAgeMetrics
	err     error
}

func (f fakeAgeSource) OldestNewestCount(ctx context.Context) (model.DataAgeMetrics, error) {
	return f.metrics, f.err
}

type fakePolicy struct {
	cfg model.RetentionConfig
}

func (f fakePolicy) Get() model.RetentionConfig {
	return f.cfg
}

func ptr(n int64) *int64 { return &n }

func TestNew_DefaultsInterval(t *testing.T) {
	m := New(fakeAgeSource{}, fakeAgeSource{}, fakeAgeSource{}, fakePolicy{}, 0)
	require.Equal(t, DefaultInterval, m.interval)
}

func TestSnapshot_CachesPerDataType(t *testing.T) {
	oldest := time.Now().Add(-time.Hour).UnixNano()
	m := New(
		fakeAgeSource{metrics: model.DataAgeMetrics{Count: 5, OldestTS: ptr(oldest), NewestTS: ptr(oldest)}},
		fakeAgeSource{metrics: model.DataAgeMetrics{Count: 1}},
		fakeAgeSource{metrics: model.DataAgeMetrics{Count: 0}},
		fakePolicy{cfg: model.DefaultRetentionConfig()},
		time.Hour,
	)

	m.sampleAll(context.Background())

	logSnap := m.Snapshot(model.DataTypeLogs)
	require.Equal(t, uint64(5), logSnap.Count)
	require.NotNil(t, logSnap.OldestTS)

	traceSnap := m.Snapshot(model.DataTypeTraces)
	require.Equal(t, uint64(0), traceSnap.Count)
	require.Nil(t, traceSnap.OldestTS)
}

func TestSampleOne_SkipsCacheUpdateOnError(t *testing.T) {
	m := New(fakeAgeSource{}, fakeAgeSource{}, fakeAgeSource{}, fakePolicy{cfg: model.DefaultRetentionConfig()}, time.Hour)
	failing := fakeAgeSource{err: context.DeadlineExceeded}

	m.sampleOne(context.Background(), model.DataTypeLogs, failing, 30)

	require.Equal(t, model.DataAgeMetrics{}, m.Snapshot(model.DataTypeLogs))
}

func TestSampleOne_EmptyStoreLeavesOldestNil(t *testing.T) {
	m := New(fakeAgeSource{}, fakeAgeSource{}, fakeAgeSource{}, fakePolicy{cfg: model.DefaultRetentionConfig()}, time.Hour)
	empty := fakeAgeSource{metrics: model.DataAgeMetrics{Count: 0}}

	m.sampleOne(context.Background(), model.DataTypeMetrics, empty, 90)

	snap := m.Snapshot(model.DataTypeMetrics)
	require.Equal(t, uint64(0), snap.Count)
	require.Nil(t, snap.OldestTS)
}

func TestSampleOne_WellWithinTTLDoesNotPanic(t *testing.T) {
	m := New(fakeAgeSource{}, fakeAgeSource{}, fakeAgeSource{}, fakePolicy{cfg: model.DefaultRetentionConfig()}, time.Hour)
	recent := time.Now().Add(-time.Minute).UnixNano()
	src := fakeAgeSource{metrics: model.DataAgeMetrics{Count: 1, OldestTS: ptr(recent), NewestTS: ptr(recent)}}

	require.NotPanics(t, func() {
		m.sampleOne(context.Background(), model.DataTypeLogs, src, 30)
	})
	require.Equal(t, uint64(1), m.Snapshot(model.DataTypeLogs).Count)
}
