package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-data-service/internal/events"
)

// EventHandler processes one queued event.
type EventHandler interface {
	EventTypes() []events.EventType
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves event handling off the request path. Publishers
// only enqueue; a single goroutine drains the queue in order.
type NotificationWorker struct {
	handler EventHandler
	logger  *zap.Logger
	queue   chan events.Event
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewNotificationWorker builds a worker with a queue of the given size.
func NewNotificationWorker(handler EventHandler, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		queue:   make(chan events.Event, buffer),
	}
}

// Start subscribes the worker to the handler's event types and begins
// draining. Events still queued when ctx ends are handled before the
// goroutine exits.
func (w *NotificationWorker) Start(ctx context.Context, dispatcher events.Dispatcher) {
	for _, eventType := range w.handler.EventTypes() {
		dispatcher.Subscribe(eventType, w.enqueue)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.queue:
				if !ok {
					return
				}
				w.handle(ctx, event)
			case <-ctx.Done():
				w.drain()
				return
			}
		}
	}()
}

// Stop closes the queue and waits for queued events to be handled.
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("notification queue full; dropping event",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)))
	}
	return nil
}

func (w *NotificationWorker) drain() {
	for {
		select {
		case event, ok := <-w.queue:
			if !ok {
				return
			}
			w.handle(context.Background(), event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) handle(ctx context.Context, event events.Event) {
	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
	}
}
