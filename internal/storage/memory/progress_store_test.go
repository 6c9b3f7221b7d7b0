package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newRecord(id, sessionID string, created time.Time) *models.StrategyRecord {
	return &models.StrategyRecord{
		Strategy: &models.ResearchStrategy{
			ID:        id,
			SessionID: sessionID,
			Approach:  models.ApproachQuickValidation,
			Status:    models.StrategyPending,
			CreatedAt: created,
		},
		IdeaTitle: "Idea",
	}
}

func TestProgressStore_SaveGetIsolation(t *testing.T) {
	store := NewProgressStore(arbor.NewLogger())
	ctx := context.Background()

	record := newRecord("stg_1", "ses_1", time.Now())
	require.NoError(t, store.Save(ctx, record))

	record.IdeaTitle = "mutated after save"

	got, err := store.Get(ctx, "stg_1")
	require.NoError(t, err)
	assert.Equal(t, "Idea", got.IdeaTitle)

	_, err = store.Get(ctx, "unknown")
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}

func TestProgressStore_ListBySessionNewestFirst(t *testing.T) {
	store := NewProgressStore(arbor.NewLogger())
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, store.Save(ctx, newRecord("stg_old", "ses_1", now.Add(-time.Hour))))
	require.NoError(t, store.Save(ctx, newRecord("stg_new", "ses_1", now)))
	require.NoError(t, store.Save(ctx, newRecord("stg_other", "ses_2", now)))

	records, err := store.ListBySession(ctx, "ses_1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "stg_new", records[0].Strategy.ID)
	assert.Equal(t, "stg_old", records[1].Strategy.ID)

	all, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestProgressStore_UpdateProgressNeverDecreases(t *testing.T) {
	store := NewProgressStore(arbor.NewLogger())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("stg_1", "ses_1", time.Now())))

	var wg sync.WaitGroup
	for _, pct := range []float64{25, 75, 50, 100, 10} {
		wg.Add(1)
		go func(p float64) {
			defer wg.Done()
			_ = store.UpdateProgress(ctx, "stg_1", models.PhaseMarketContext, p)
		}(pct)
	}
	wg.Wait()

	got, err := store.Get(ctx, "stg_1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.Progress)
	assert.Equal(t, 100.0, got.Strategy.ProgressPercentage)
}

func TestProgressStore_Delete(t *testing.T) {
	store := NewProgressStore(arbor.NewLogger())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("stg_1", "ses_1", time.Now())))

	require.NoError(t, store.Delete(ctx, "stg_1"))
	assert.True(t, errors.Is(store.Delete(ctx, "stg_1"), interfaces.ErrNotFound))
}

func TestProgressStore_TransitionStatus(t *testing.T) {
	store := NewProgressStore(arbor.NewLogger())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, newRecord("stg_1", "ses_1", time.Now())))

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.TransitionStatus(ctx, "stg_1", models.StrategyPending, models.StrategyInProgress, at)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.True(t, errors.Is(err, interfaces.ErrInvalidState))
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)

	got, err := store.Get(ctx, "stg_1")
	require.NoError(t, err)
	assert.Equal(t, models.StrategyInProgress, got.Strategy.Status)
	require.NotNil(t, got.Strategy.StartedAt)
	assert.True(t, at.Equal(*got.Strategy.StartedAt))

	_, err = store.TransitionStatus(ctx, "stg_missing", models.StrategyPending, models.StrategyInProgress, at)
	assert.True(t, errors.Is(err, interfaces.ErrNotFound))
}
