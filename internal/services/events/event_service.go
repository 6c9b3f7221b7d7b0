package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/bjacksonJaxSun/ideasmatter/internal/interfaces"
)

// queueSize bounds how many async events may wait for delivery
const queueSize = 256

type queuedEvent struct {
	ctx   context.Context
	event interfaces.Event
}

// Service is the in-process event bus. Async events are delivered by a
// single dispatcher in publish order, so a strategy's progress events can
// never overtake its completion event.
type Service struct {
	subscribers map[interfaces.EventType][]interfaces.EventHandler
	queue       chan queuedEvent
	done        chan struct{}
	closed      bool
	mu          sync.RWMutex
	wg          sync.WaitGroup
	logger      arbor.ILogger
}

// NewService creates a new event service and starts its dispatcher
func NewService(logger arbor.ILogger) interfaces.EventService {
	s := &Service{
		subscribers: make(map[interfaces.EventType][]interfaces.EventHandler),
		queue:       make(chan queuedEvent, queueSize),
		done:        make(chan struct{}),
		logger:      logger,
	}

	s.wg.Add(1)
	go s.dispatch()

	return s
}

// Subscribe registers a handler for an event type
func (s *Service) Subscribe(eventType interfaces.EventType, handler interfaces.EventHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("event service closed: %w", interfaces.ErrInvalidState)
	}

	s.subscribers[eventType] = append(s.subscribers[eventType], handler)

	s.logger.Debug().
		Str("event_type", string(eventType)).
		Int("subscriber_count", len(s.subscribers[eventType])).
		Msg("Event handler subscribed")

	return nil
}

// Publish queues an event for ordered asynchronous delivery. It blocks only
// while the queue is full, and gives up when ctx is done.
func (s *Service) Publish(ctx context.Context, event interfaces.Event) error {
	s.mu.RLock()
	closed := s.closed
	subscribed := len(s.subscribers[event.Type]) > 0
	s.mu.RUnlock()

	if closed {
		return fmt.Errorf("event service closed: %w", interfaces.ErrInvalidState)
	}
	if !subscribed {
		return nil
	}

	// Delivery outlives the publisher's request
	queued := queuedEvent{ctx: context.WithoutCancel(ctx), event: event}

	select {
	case s.queue <- queued:
		return nil
	case <-s.done:
		return fmt.Errorf("event service closed: %w", interfaces.ErrInvalidState)
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", event.Type, ctx.Err())
	}
}

// PublishSync runs every subscriber concurrently and waits for all of them
func (s *Service) PublishSync(ctx context.Context, event interfaces.Event) error {
	handlers := s.handlersFor(event.Type)
	if len(handlers) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(handlers))

	for _, handler := range handlers {
		wg.Add(1)
		go func(h interfaces.EventHandler) {
			defer wg.Done()
			if err := s.invoke(ctx, h, event); err != nil {
				errChan <- err
			}
		}(handler)
	}

	wg.Wait()
	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("event handlers failed: %d errors", len(errs))
	}

	return nil
}

// Close stops accepting events, delivers whatever is queued and drops all
// subscriptions. Calling it twice is harmless.
func (s *Service) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	close(s.done)

	s.wg.Wait()

	s.mu.Lock()
	s.subscribers = make(map[interfaces.EventType][]interfaces.EventHandler)
	s.mu.Unlock()

	s.logger.Info().Msg("Event service closed")
	return nil
}

func (s *Service) dispatch() {
	defer s.wg.Done()

	for {
		select {
		case queued := <-s.queue:
			s.deliver(queued)
		case <-s.done:
			// Drain what was queued before Close
			for {
				select {
				case queued := <-s.queue:
					s.deliver(queued)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) deliver(queued queuedEvent) {
	for _, handler := range s.handlersFor(queued.event.Type) {
		s.invoke(queued.ctx, handler, queued.event)
	}
}

func (s *Service) handlersFor(eventType interfaces.EventType) []interfaces.EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.subscribers[eventType]
}

// invoke runs one handler, turning a panic into an error
func (s *Service) invoke(ctx context.Context, handler interfaces.EventHandler, event interfaces.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event handler panicked: %v", r)
		}
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("event_type", string(event.Type)).
				Msg("Event handler failed")
		}
	}()

	return handler(ctx, event)
}
