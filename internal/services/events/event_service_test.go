package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

func TestService_PublishSyncDeliversToAllSubscribers(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	var calls int32
	handler := func(ctx context.Context, event interfaces.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}

	require.NoError(t, svc.Subscribe(interfaces.EventStrategyProgress, handler))
	require.NoError(t, svc.Subscribe(interfaces.EventStrategyProgress, handler))

	err := svc.PublishSync(context.Background(), interfaces.Event{
		Type:    interfaces.EventStrategyProgress,
		Payload: map[string]interface{}{"strategy_id": "s1"},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestService_PublishSyncReportsHandlerErrors(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	require.NoError(t, svc.Subscribe(interfaces.EventStrategyFailed, func(ctx context.Context, event interfaces.Event) error {
		return errors.New("boom")
	}))

	err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventStrategyFailed})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "1 errors")
}

func TestService_PublishAsync(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	done := make(chan struct{})
	require.NoError(t, svc.Subscribe(interfaces.EventStrategyCompleted, func(ctx context.Context, event interfaces.Event) error {
		close(done)
		return nil
	}))

	require.NoError(t, svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventStrategyCompleted}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestService_SubscribeNilHandler(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	assert.Error(t, svc.Subscribe(interfaces.EventStrategyProgress, nil))
}

func TestService_PublishPreservesOrder(t *testing.T) {
	svc := NewService(arbor.NewLogger())

	var (
		mu       sync.Mutex
		received []float64
	)
	record := func(ctx context.Context, event interfaces.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event.Payload.(*models.StrategyProgressEvent).Percentage)
		return nil
	}
	require.NoError(t, svc.Subscribe(interfaces.EventStrategyProgress, record))
	require.NoError(t, svc.Subscribe(interfaces.EventStrategyCompleted, record))

	for _, pct := range []float64{25, 50, 75} {
		require.NoError(t, svc.Publish(context.Background(), interfaces.Event{
			Type:    interfaces.EventStrategyProgress,
			Payload: &models.StrategyProgressEvent{StrategyID: "s1", Percentage: pct},
		}))
	}
	require.NoError(t, svc.Publish(context.Background(), interfaces.Event{
		Type:    interfaces.EventStrategyCompleted,
		Payload: &models.StrategyProgressEvent{StrategyID: "s1", Percentage: 100},
	}))

	// Close drains the queue before returning
	require.NoError(t, svc.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []float64{25, 50, 75, 100}, received)
}

func TestService_ClosedRejectsPublish(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	require.NoError(t, svc.Subscribe(interfaces.EventStrategyProgress, func(ctx context.Context, event interfaces.Event) error {
		return nil
	}))
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())

	err := svc.Publish(context.Background(), interfaces.Event{Type: interfaces.EventStrategyProgress})
	assert.ErrorIs(t, err, interfaces.ErrInvalidState)
	assert.ErrorIs(t, svc.Subscribe(interfaces.EventStrategyFailed, func(ctx context.Context, event interfaces.Event) error {
		return nil
	}), interfaces.ErrInvalidState)
}

func TestService_PublishSyncRecoversPanics(t *testing.T) {
	svc := NewService(arbor.NewLogger())
	defer svc.Close()

	require.NoError(t, svc.Subscribe(interfaces.EventStrategyFailed, func(ctx context.Context, event interfaces.Event) error {
		panic("handler bug")
	}))

	err := svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventStrategyFailed})
	assert.Error(t, err)
}

func TestSubscribeLoggerToAllEvents(t *testing.T) {
	logger := arbor.NewLogger()
	svc := NewService(logger)
	defer svc.Close()

	require.NoError(t, SubscribeLoggerToAllEvents(svc, logger))

	err := svc.PublishSync(context.Background(), interfaces.Event{
		Type: interfaces.EventStrategyProgress,
		Payload: &models.StrategyProgressEvent{
			StrategyID: "s1",
			SessionID:  "sess",
			Phase:      models.PhaseMarketContext,
			Percentage: 25,
			Status:     models.StrategyInProgress,
		},
	})
	assert.NoError(t, err)

	err = svc.PublishSync(context.Background(), interfaces.Event{Type: interfaces.EventStrategyFailed, Payload: "unexpected"})
	assert.NoError(t, err)
}
