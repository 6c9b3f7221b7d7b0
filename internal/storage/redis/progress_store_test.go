package redis

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func setupStore(t *testing.T) (*ProgressStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := NewProgressStore(context.Background(), client, common.RedisConfig{
		TTL:    "1h",
		Prefix: "test:strategy:",
	}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store, mr
}

func record(id, sessionID string, created time.Time) *models.StrategyRecord {
	return &models.StrategyRecord{
		Strategy: &models.ResearchStrategy{
			ID:        id,
			SessionID: sessionID,
			Approach:  models.ApproachMarketDeepDive,
			Status:    models.StrategyInProgress,
			CreatedAt: created,
		},
	}
}

func TestProgressStore_SaveAndGet(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, record("stg_1", "ses_1", time.Now())))

	got, err := store.Get(ctx, "stg_1")
	require.NoError(t, err)
	assert.Equal(t, "ses_1", got.Strategy.SessionID)
	assert.True(t, mr.Exists("test:strategy:stg_1"))
	assert.Equal(t, time.Hour, mr.TTL("test:strategy:stg_1"))

	_, err = store.Get(ctx, "stg_missing")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestProgressStore_UpdateProgressKeepsMaximum(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, record("stg_1", "ses_1", time.Now())))
	require.NoError(t, store.UpdateProgress(ctx, "stg_1", models.PhaseCustomerUnderstanding, 60))
	require.NoError(t, store.UpdateProgress(ctx, "stg_1", models.PhaseMarketContext, 20))

	got, err := store.Get(ctx, "stg_1")
	require.NoError(t, err)
	assert.Equal(t, 60.0, got.Progress)
	assert.Equal(t, models.PhaseCustomerUnderstanding, got.CurrentPhase)
	assert.Equal(t, time.Hour, mr.TTL("test:strategy:stg_1"))

	err = store.UpdateProgress(ctx, "stg_missing", models.PhaseMarketContext, 20)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestProgressStore_ListPrunesExpired(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Save(ctx, record("stg_a", "ses_1", now.Add(-time.Minute))))
	require.NoError(t, store.Save(ctx, record("stg_b", "ses_1", now)))
	require.NoError(t, store.Save(ctx, record("stg_c", "ses_2", now)))

	records, err := store.ListBySession(ctx, "ses_1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "stg_b", records[0].Strategy.ID)

	mr.Del("test:strategy:stg_a")

	records, err = store.ListBySession(ctx, "ses_1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	members, err := mr.SMembers("test:strategy:session:ses_1")
	require.NoError(t, err)
	assert.Equal(t, []string{"stg_b"}, members)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestProgressStore_Delete(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, record("stg_1", "ses_1", time.Now())))
	require.NoError(t, store.Delete(ctx, "stg_1"))

	records, err := store.ListBySession(ctx, "ses_1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestProgressStore_TransitionStatusAcrossClients(t *testing.T) {
	store, mr := setupStore(t)
	ctx := context.Background()

	pending := record("stg_1", "ses_1", time.Now())
	pending.Strategy.Status = models.StrategyPending
	require.NoError(t, store.Save(ctx, pending))

	// A second instance with its own connection pool
	other, err := NewProgressStore(ctx, redis.NewClient(&redis.Options{Addr: mr.Addr()}), common.RedisConfig{
		TTL:    "1h",
		Prefix: "test:strategy:",
	}, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { other.Close() })

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		s := store
		if i%2 == 1 {
			s = other
		}
		wg.Add(1)
		go func(s *ProgressStore) {
			defer wg.Done()
			if _, err := s.TransitionStatus(ctx, "stg_1", models.StrategyPending, models.StrategyInProgress, at); err == nil {
				wins.Add(1)
			}
		}(s)
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())

	got, err := store.Get(ctx, "stg_1")
	require.NoError(t, err)
	assert.Equal(t, models.StrategyInProgress, got.Strategy.Status)
	require.NotNil(t, got.Strategy.StartedAt)
	assert.True(t, at.Equal(*got.Strategy.StartedAt))
	assert.Equal(t, time.Hour, mr.TTL("test:strategy:stg_1"))

	_, err = other.TransitionStatus(ctx, "stg_1", models.StrategyPending, models.StrategyInProgress, at)
	assert.True(t, errors.Is(err, interfaces.ErrInvalidState))

	_, err = store.TransitionStatus(ctx, "stg_missing", models.StrategyPending, models.StrategyInProgress, at)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}
