package events

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
	"github.com/bjacksonJaxSun/ideasmatter/internal/models"
)

// NewLoggerSubscriber creates an event handler that logs strategy lifecycle events
func NewLoggerSubscriber(logger arbor.ILogger) interfaces.EventHandler {
	return func(ctx context.Context, event interfaces.Event) error {
		logEvent := logger.Debug().Str("event_type", string(event.Type))

		switch payload := event.Payload.(type) {
		case *models.StrategyProgressEvent:
			logEvent = logEvent.
				Str("strategy_id", payload.StrategyID).
				Str("session_id", payload.SessionID).
				Str("status", string(payload.Status)).
				Float64("progress", payload.Percentage)
			if payload.Phase != "" {
				logEvent = logEvent.Str("phase", string(payload.Phase))
			}
			if payload.Error != "" {
				logEvent = logEvent.Str("error", payload.Error)
			}
		case nil:
		default:
			logEvent = logEvent.Str("payload_type", fmt.Sprintf("%T", payload))
		}

		logEvent.Msg("Event published")
		return nil
	}
}

// SubscribeLoggerToAllEvents subscribes the logger to every strategy event type
func SubscribeLoggerToAllEvents(eventService interfaces.EventService, logger arbor.ILogger) error {
	subscriber := NewLoggerSubscriber(logger)

	eventTypes := []interfaces.EventType{
		interfaces.EventStrategyProgress,
		interfaces.EventStrategyCompleted,
		interfaces.EventStrategyFailed,
	}

	for _, eventType := range eventTypes {
		if err := eventService.Subscribe(eventType, subscriber); err != nil {
			return fmt.Errorf("failed to subscribe logger to event type %s: %w", eventType, err)
		}
	}

	return nil
}
