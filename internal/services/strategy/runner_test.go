package strategy

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/bjacksonJaxSun/ideasmatter/internal/services/events"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/badger"
	"github.com/bjacksonJaxSun/ideasmatter/internal/storage/memory"
	redisstore "github.com/bjacksonJaxSun/ideasmatter/internal/storage/redis"
)

type runnerFixture struct {
	runner  *Runner
	service *Service
	store   interfaces.ProgressStore
	storage *badger.Manager
	events  interfaces.EventService
	config  *common.StrategyConfig
}

func newRunnerFixture(t *testing.T, config *common.StrategyConfig) *runnerFixture {
	t.Helper()
	return newRunnerFixtureWithStore(t, config, memory.NewProgressStore(arbor.NewLogger()))
}

func newRunnerFixtureWithStore(t *testing.T, config *common.StrategyConfig, store interfaces.ProgressStore) *runnerFixture {
	t.Helper()
	logger := arbor.NewLogger()

	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	require.NoError(t, manager.SessionStorage().SaveSession(context.Background(), &models.ResearchSession{
		ID:          "ses_1",
		Title:       "Meal kits",
		Description: "Weekly recipe boxes",
		Status:      models.SessionStatusActive,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	eventService := events.NewService(logger)
	t.Cleanup(func() { eventService.Close() })
	service := NewService(nil, config, logger)
	return &runnerFixture{
		runner:  NewRunner(ctx, service, store, manager, eventService, config, logger),
		service: service,
		store:   store,
		storage: manager,
		events:  eventService,
		config:  config,
	}
}

// redisStore opens a progress store with its own client, as a separate API instance would
func redisStore(t *testing.T, mr *miniredis.Miniredis) interfaces.ProgressStore {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	store, err := redisstore.NewProgressStore(context.Background(), client, common.RedisConfig{
		TTL:    "1h",
		Prefix: "test:strategy:",
	}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func waitForRuns(t *testing.T, runner *Runner) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, runner.Wait(ctx))
}

func TestRunner_InitiateUsesSessionIdea(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	ctx := context.Background()

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachMarketDeepDive, map[string]interface{}{"region": "EU"})
	require.NoError(t, err)
	assert.Equal(t, "Market Deep Dive Analysis: Meal kits", initiation.Strategy.Title)
	assert.Equal(t, "45 minutes", initiation.EstimatedCompletionTime)
	assert.Len(t, initiation.IncludedAnalyses, 4)
	assert.Len(t, initiation.NextSteps, 3)

	record, err := f.store.Get(ctx, initiation.Strategy.ID)
	require.NoError(t, err)
	assert.Equal(t, "Weekly recipe boxes", record.IdeaDescription)
	assert.Equal(t, "EU", record.Strategy.CustomParameters["region"])

	_, err = f.runner.Initiate(ctx, "ses_missing", models.ApproachMarketDeepDive, nil)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestRunner_ExecutesInBackground(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	ctx := context.Background()

	completed := make(chan *models.StrategyProgressEvent, 1)
	require.NoError(t, f.events.Subscribe(interfaces.EventStrategyCompleted, func(ctx context.Context, event interfaces.Event) error {
		completed <- event.Payload.(*models.StrategyProgressEvent)
		return nil
	}))

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachLaunchStrategy, nil)
	require.NoError(t, err)
	id := initiation.Strategy.ID

	progress, err := f.runner.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyPending, progress.Status)
	assert.Equal(t, 90, progress.EstimatedCompletionMinutes)
	assert.Equal(t, models.PhaseMarketContext, progress.CurrentPhase)

	_, err = f.runner.Result(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrInvalidState)

	require.NoError(t, f.runner.Start(ctx, id))
	waitForRuns(t, f.runner)

	select {
	case event := <-completed:
		assert.Equal(t, id, event.StrategyID)
		assert.Equal(t, "ses_1", event.SessionID)
		assert.Equal(t, 100.0, event.Percentage)
	case <-time.After(5 * time.Second):
		t.Fatal("completion event not published")
	}

	progress, err = f.runner.Progress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyCompleted, progress.Status)
	assert.Equal(t, 100.0, progress.ProgressPercentage)
	assert.Equal(t, models.PhaseStrategicAssessment, progress.CurrentPhase)
	assert.Zero(t, progress.EstimatedCompletionMinutes)

	result, err := f.runner.Result(ctx, id)
	require.NoError(t, err)
	assert.Len(t, result.StrategicOptions, 5)

	err = f.runner.Start(ctx, id)
	assert.ErrorIs(t, err, interfaces.ErrInvalidState)

	comparison, err := f.runner.Compare(ctx, id, nil)
	require.NoError(t, err)
	assert.Len(t, comparison.TradeOffAnalysis, 5)
	assert.Equal(t, "ses_1", comparison.SessionID)

	strategies, err := f.runner.ListBySession(ctx, "ses_1")
	require.NoError(t, err)
	require.Len(t, strategies, 1)
	assert.Equal(t, models.StrategyCompleted, strategies[0].Status)
}

func TestRunner_TimeoutMarksError(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "1h", ExecutionTimeout: "20ms"})
	ctx := context.Background()

	failed := make(chan *models.StrategyProgressEvent, 1)
	require.NoError(t, f.events.Subscribe(interfaces.EventStrategyFailed, func(ctx context.Context, event interfaces.Event) error {
		failed <- event.Payload.(*models.StrategyProgressEvent)
		return nil
	}))

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachQuickValidation, nil)
	require.NoError(t, err)
	require.NoError(t, f.runner.Start(ctx, initiation.Strategy.ID))
	waitForRuns(t, f.runner)

	select {
	case event := <-failed:
		assert.Equal(t, models.StrategyError, event.Status)
		assert.Contains(t, event.Error, "deadline exceeded")
	case <-time.After(5 * time.Second):
		t.Fatal("failure event not published")
	}

	progress, err := f.runner.Progress(ctx, initiation.Strategy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyError, progress.Status)
	assert.NotEmpty(t, progress.Error)

	_, err = f.runner.Compare(ctx, initiation.Strategy.ID, nil)
	assert.ErrorIs(t, err, interfaces.ErrInvalidState)
}

func TestRunner_UnknownStrategy(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	ctx := context.Background()

	assert.ErrorIs(t, f.runner.Start(ctx, "stg_missing"), interfaces.ErrNotFound)
	_, err := f.runner.Progress(ctx, "stg_missing")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.ErrorIs(t, f.runner.Delete(ctx, "stg_missing"), interfaces.ErrNotFound)
}

func TestRunner_ReapRemovesOnlyOldFinishedStrategies(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	ctx := context.Background()

	finished, err := f.runner.Initiate(ctx, "ses_1", models.ApproachQuickValidation, nil)
	require.NoError(t, err)
	require.NoError(t, f.runner.Start(ctx, finished.Strategy.ID))
	waitForRuns(t, f.runner)

	pending, err := f.runner.Initiate(ctx, "ses_1", models.ApproachQuickValidation, nil)
	require.NoError(t, err)

	removed, err := f.runner.Reap(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, removed)

	f.runner.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	removed, err = f.runner.Reap(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = f.store.Get(ctx, finished.Strategy.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	_, err = f.store.Get(ctx, pending.Strategy.ID)
	assert.NoError(t, err)
}

func TestRunner_RemainingMinutes(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.runner.now = func() time.Time { return now }

	started := now.Add(-10 * time.Minute)
	record := &models.StrategyRecord{
		Strategy: &models.ResearchStrategy{
			Status:                   models.StrategyInProgress,
			EstimatedDurationMinutes: 45,
			StartedAt:                &started,
		},
		Progress: 25,
	}
	assert.Equal(t, 30, f.runner.remainingMinutes(record))

	record.Progress = 0
	assert.Equal(t, 45, f.runner.remainingMinutes(record))

	record.Strategy.Status = models.StrategyError
	assert.Zero(t, f.runner.remainingMinutes(record))
}

func TestRunner_StartKeepsStartedAt(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	f.runner.now = func() time.Time { return started }

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachQuickValidation, nil)
	require.NoError(t, err)
	require.NoError(t, f.runner.Start(ctx, initiation.Strategy.ID))
	waitForRuns(t, f.runner)

	record, err := f.store.Get(ctx, initiation.Strategy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyCompleted, record.Strategy.Status)
	require.NotNil(t, record.Strategy.StartedAt)
	assert.True(t, started.Equal(*record.Strategy.StartedAt), "got %s", record.Strategy.StartedAt)
}

func TestRunner_StartRejectsDeletedSession(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "0s"})
	ctx := context.Background()

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachQuickValidation, nil)
	require.NoError(t, err)
	require.NoError(t, f.storage.DeleteSessionCascade(ctx, "ses_1"))

	err = f.runner.Start(ctx, initiation.Strategy.ID)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	waitForRuns(t, f.runner)

	record, err := f.store.Get(ctx, initiation.Strategy.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyPending, record.Strategy.Status)
	assert.Nil(t, record.Result)
}

func TestRunner_ProgressNeverDecreasesWhilePolling(t *testing.T) {
	f := newRunnerFixture(t, &common.StrategyConfig{PhaseDelay: "15ms"})
	ctx := context.Background()

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachLaunchStrategy, nil)
	require.NoError(t, err)
	id := initiation.Strategy.ID

	statusRank := map[models.StrategyStatus]int{
		models.StrategyPending:    0,
		models.StrategyInProgress: 1,
		models.StrategyCompleted:  2,
	}

	require.NoError(t, f.runner.Start(ctx, id))

	var (
		last     = -1.0
		lastRank = 0
		seen     = map[float64]bool{}
		final    *models.StrategyProgress
	)
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		progress, err := f.runner.Progress(ctx, id)
		require.NoError(t, err)
		require.NotEqual(t, models.StrategyError, progress.Status, progress.Error)

		require.GreaterOrEqual(t, progress.ProgressPercentage, last, "progress went backwards")
		rank := statusRank[progress.Status]
		require.GreaterOrEqual(t, rank, lastRank, "status went backwards")

		last, lastRank = progress.ProgressPercentage, rank
		seen[progress.ProgressPercentage] = true

		if progress.Status == models.StrategyCompleted {
			final = progress
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	waitForRuns(t, f.runner)

	require.NotNil(t, final, "strategy did not complete in time")
	assert.Equal(t, 100.0, final.ProgressPercentage)
	assert.Greater(t, len(seen), 2, "polling should observe intermediate progress, saw %v", seen)
}

func TestRunner_SharedRedisStoreStartsOnce(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	f := newRunnerFixtureWithStore(t, &common.StrategyConfig{PhaseDelay: "0s"}, redisStore(t, mr))
	ctx := context.Background()

	// A second instance: own redis client, same badger data and event bus
	other := NewRunner(ctx, f.service, redisStore(t, mr), f.storage, f.events, f.config, arbor.NewLogger())

	var completions atomic.Int32
	require.NoError(t, f.events.Subscribe(interfaces.EventStrategyCompleted, func(ctx context.Context, event interfaces.Event) error {
		completions.Add(1)
		return nil
	}))

	initiation, err := f.runner.Initiate(ctx, "ses_1", models.ApproachQuickValidation, nil)
	require.NoError(t, err)
	id := initiation.Strategy.ID

	var (
		wg      sync.WaitGroup
		ready   = make(chan struct{})
		started atomic.Int32
		errs    = make(chan error, 2)
	)
	for _, runner := range []*Runner{f.runner, other} {
		wg.Add(1)
		go func(runner *Runner) {
			defer wg.Done()
			<-ready
			if err := runner.Start(ctx, id); err != nil {
				errs <- err
				return
			}
			started.Add(1)
		}(runner)
	}
	close(ready)
	wg.Wait()
	close(errs)

	waitForRuns(t, f.runner)
	waitForRuns(t, other)
	require.NoError(t, f.events.Close())

	assert.Equal(t, int32(1), started.Load(), "exactly one instance may start the strategy")
	for err := range errs {
		assert.True(t, errors.Is(err, interfaces.ErrInvalidState), "unexpected error: %v", err)
	}
	assert.Equal(t, int32(1), completions.Load())

	record, err := f.store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyCompleted, record.Strategy.Status)

	assert.ErrorIs(t, other.Start(ctx, id), interfaces.ErrInvalidState)
}
