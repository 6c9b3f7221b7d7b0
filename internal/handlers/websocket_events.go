package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/bjacksonJaxSun/ideasmatter/internal/common"
	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

const defaultThrottleInterval = 500 * time.Millisecond

// EventSubscriber bridges strategy events from the event service to WebSocket clients
type EventSubscriber struct {
	handler      *WebSocketHandler
	eventService interfaces.EventService
	logger       arbor.ILogger
	interval     time.Duration
	mu           sync.Mutex
	throttlers   map[string]*rate.Limiter // One limiter per strategy for progress events
}

// NewEventSubscriber creates the subscriber and registers it for all strategy events.
// A zero throttle interval disables throttling.
func NewEventSubscriber(handler *WebSocketHandler, eventService interfaces.EventService, logger arbor.ILogger, config *common.WebSocketConfig) *EventSubscriber {
	interval := defaultThrottleInterval
	if config != nil {
		interval = common.ParseDuration(config.ThrottleInterval, defaultThrottleInterval)
	}

	s := &EventSubscriber{
		handler:      handler,
		eventService: eventService,
		logger:       logger,
		interval:     interval,
		throttlers:   make(map[string]*rate.Limiter),
	}

	if eventService == nil {
		logger.Warn().Msg("EventSubscriber created with nil eventService - subscriptions will be skipped")
		return s
	}

	// Failures are already logged; the hub still serves connected clients
	_ = s.SubscribeAll()
	return s
}

// SubscribeAll registers subscriptions for all strategy lifecycle events.
// Failed subscriptions are logged and returned joined; the others stay registered.
func (s *EventSubscriber) SubscribeAll() error {
	if s.eventService == nil {
		s.logger.Warn().Msg("Cannot subscribe to events - eventService is nil")
		return nil
	}

	subscriptions := []struct {
		eventType interfaces.EventType
		handler   interfaces.EventHandler
	}{
		{interfaces.EventStrategyProgress, s.handleProgress},
		{interfaces.EventStrategyCompleted, s.handleFinished(MessageStrategyCompleted)},
		{interfaces.EventStrategyFailed, s.handleFinished(MessageStrategyFailed)},
	}

	var errs []error
	for _, sub := range subscriptions {
		if err := s.eventService.Subscribe(sub.eventType, sub.handler); err != nil {
			s.logger.Warn().
				Err(err).
				Str("event_type", string(sub.eventType)).
				Msg("Failed to subscribe WebSocket hub to strategy event")
			errs = append(errs, fmt.Errorf("subscribe %s: %w", sub.eventType, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	s.logger.Debug().Dur("throttle", s.interval).Msg("EventSubscriber registered for strategy events")
	return nil
}

func (s *EventSubscriber) handleProgress(ctx context.Context, event interfaces.Event) error {
	payload, ok := event.Payload.(*models.StrategyProgressEvent)
	if !ok {
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Invalid strategy event payload type")
		return nil
	}

	if !s.allow(payload.StrategyID) {
		s.logger.Debug().Str("strategy_id", payload.StrategyID).Msg("Progress event throttled")
		return nil
	}

	s.handler.BroadcastStrategyEvent(MessageStrategyProgress, payload)
	return nil
}

// handleFinished always broadcasts and releases the strategy's throttler
func (s *EventSubscriber) handleFinished(messageType string) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		payload, ok := event.Payload.(*models.StrategyProgressEvent)
		if !ok {
			s.logger.Warn().Str("event_type", string(event.Type)).Msg("Invalid strategy event payload type")
			return nil
		}

		s.mu.Lock()
		delete(s.throttlers, payload.StrategyID)
		s.mu.Unlock()

		s.handler.BroadcastStrategyEvent(messageType, payload)
		return nil
	}
}

// allow applies the per-strategy rate limit, one event per interval (burst 1)
func (s *EventSubscriber) allow(strategyID string) bool {
	if s.interval <= 0 {
		return true
	}

	s.mu.Lock()
	limiter, ok := s.throttlers[strategyID]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(s.interval), 1)
		s.throttlers[strategyID] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow()
}
