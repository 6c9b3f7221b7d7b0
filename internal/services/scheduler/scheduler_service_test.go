package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
)

type stubReaper struct {
	calls  atomic.Int32
	retain time.Duration
	err    error
}

func (r *stubReaper) Reap(ctx context.Context, retain time.Duration) (int, error) {
	r.calls.Add(1)
	r.retain = retain
	return 2, r.err
}

type stubCleaner struct {
	calls atomic.Int32
}

func (c *stubCleaner) CleanupExpired(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 1, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	s := NewService(arbor.NewLogger())
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func waitForRun(t *testing.T, s *Service, name string) *interfaces.JobStatus {
	t.Helper()
	var status *interfaces.JobStatus
	require.Eventually(t, func() bool {
		var err error
		status, err = s.GetJobStatus(name)
		return err == nil && status.LastRun != nil && !status.IsRunning
	}, 2*time.Second, 10*time.Millisecond)
	return status
}

func TestRegisterJob_RejectsInvalidSchedule(t *testing.T) {
	s := newTestService(t)

	err := s.RegisterJob("bad", "every minute", "", func(ctx context.Context) error { return nil })
	assert.Error(t, err)

	err = s.RegisterJob("nil", "* * * * *", "", nil)
	assert.ErrorIs(t, err, interfaces.ErrInvalidInput)
}

func TestRegisterJob_Duplicate(t *testing.T) {
	s := newTestService(t)
	handler := func(ctx context.Context) error { return nil }

	require.NoError(t, s.RegisterJob("job", "* * * * *", "first", handler))
	assert.Error(t, s.RegisterJob("job", "* * * * *", "second", handler))
}

func TestTriggerJob_RecordsSuccessAndFailure(t *testing.T) {
	s := newTestService(t)

	var fail atomic.Bool
	require.NoError(t, s.RegisterJob("job", "0 3 * * *", "nightly", func(ctx context.Context) error {
		if fail.Load() {
			return errors.New("boom")
		}
		return nil
	}))

	require.NoError(t, s.TriggerJob("job"))
	status := waitForRun(t, s, "job")
	assert.Empty(t, status.LastError)
	assert.Equal(t, "nightly", status.Description)

	fail.Store(true)
	require.NoError(t, s.TriggerJob("job"))
	require.Eventually(t, func() bool {
		status, err := s.GetJobStatus("job")
		return err == nil && status.LastError == "boom"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestTriggerJob_RecoversPanic(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.RegisterJob("panics", "* * * * *", "", func(ctx context.Context) error {
		panic("kaboom")
	}))

	require.NoError(t, s.TriggerJob("panics"))
	status := waitForRun(t, s, "panics")
	assert.Equal(t, "panic: kaboom", status.LastError)
}

func TestTriggerJob_Unknown(t *testing.T) {
	s := newTestService(t)
	assert.ErrorIs(t, s.TriggerJob("missing"), interfaces.ErrNotFound)

	_, err := s.GetJobStatus("missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestEnableDisableJob(t *testing.T) {
	s := newTestService(t)
	require.NoError(t, s.RegisterJob("job", "* * * * *", "", func(ctx context.Context) error { return nil }))
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	status, err := s.GetJobStatus("job")
	require.NoError(t, err)
	assert.True(t, status.Enabled)
	assert.NotNil(t, status.NextRun)

	require.NoError(t, s.DisableJob("job"))
	status, err = s.GetJobStatus("job")
	require.NoError(t, err)
	assert.False(t, status.Enabled)
	assert.Nil(t, status.NextRun)

	require.NoError(t, s.EnableJob("job"))
	status, err = s.GetJobStatus("job")
	require.NoError(t, err)
	assert.True(t, status.Enabled)

	assert.ErrorIs(t, s.EnableJob("missing"), interfaces.ErrNotFound)
	assert.Error(t, s.Start())

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
}

func TestRegisterMaintenanceJobs(t *testing.T) {
	s := newTestService(t)
	reaper := &stubReaper{}
	cleaner := &stubCleaner{}

	err := RegisterMaintenanceJobs(s, reaper, cleaner, &common.StrategyConfig{
		ReaperSchedule: "*/5 * * * *",
		RetainFinished: "2h",
	}, arbor.NewLogger())
	require.NoError(t, err)

	statuses := s.GetAllJobStatuses()
	require.Len(t, statuses, 2)
	assert.Equal(t, "*/5 * * * *", statuses[StrategyReaperJob].Schedule)
	assert.Equal(t, "*/5 * * * *", statuses[ExportCleanupJob].Schedule)

	require.NoError(t, s.TriggerJob(StrategyReaperJob))
	waitForRun(t, s, StrategyReaperJob)
	require.NoError(t, s.TriggerJob(ExportCleanupJob))
	waitForRun(t, s, ExportCleanupJob)

	assert.Equal(t, int32(1), reaper.calls.Load())
	assert.Equal(t, 2*time.Hour, reaper.retain)
	assert.Equal(t, int32(1), cleaner.calls.Load())
}

func TestRegisterMaintenanceJobs_DefaultsAndNil(t *testing.T) {
	s := newTestService(t)

	require.NoError(t, RegisterMaintenanceJobs(s, &stubReaper{}, nil, &common.StrategyConfig{}, arbor.NewLogger()))

	statuses := s.GetAllJobStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, defaultReaperSchedule, statuses[StrategyReaperJob].Schedule)
}

func TestRegisterMaintenanceJobs_ReaperError(t *testing.T) {
	s := newTestService(t)
	reaper := &stubReaper{err: errors.New("store offline")}
	require.NoError(t, RegisterMaintenanceJobs(s, reaper, nil, &common.StrategyConfig{}, arbor.NewLogger()))

	require.NoError(t, s.TriggerJob(StrategyReaperJob))
	status := waitForRun(t, s, StrategyReaperJob)
	assert.Equal(t, "store offline", status.LastError)
}
