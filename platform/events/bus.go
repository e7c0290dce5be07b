package events

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"leadboard_backend/platform/logger"
)

// InMemoryBus dispatches events to handlers registered in the same process.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *logger.Logger
}

// NewInMemoryBus creates an empty in-process bus.
func NewInMemoryBus(log *logger.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]Handler),
		log:      log,
	}
}

// Subscribe registers a handler for the given event name.
func (b *InMemoryBus) Subscribe(eventName string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventName] = append(b.handlers[eventName], handler)
}

func (b *InMemoryBus) handlersFor(eventName string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()
	handlers := make([]Handler, len(b.handlers[eventName]))
	copy(handlers, b.handlers[eventName])
	return handlers
}

// Publish runs every handler in its own goroutine. Handler errors are logged,
// never returned to the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event Event) {
	// Detach from the request so handlers outlive the HTTP response.
	detached := context.WithoutCancel(ctx)
	for _, h := range b.handlersFor(event.EventName()) {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					b.logFailure(event, fmt.Errorf("handler panic: %v", r))
				}
			}()
			if err := h.Handle(detached, event); err != nil {
				b.logFailure(event, err)
			}
		}(h)
	}
}

// PublishSync runs handlers sequentially and joins their errors.
func (b *InMemoryBus) PublishSync(ctx context.Context, event Event) error {
	var errs []error
	for _, h := range b.handlersFor(event.EventName()) {
		if err := h.Handle(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *InMemoryBus) logFailure(event Event, err error) {
	if b.log == nil {
		return
	}
	b.log.Error("event handler failed", "event", event.EventName(), "eventId", event.EventID(), "error", err)
}

var _ Bus = (*InMemoryBus)(nil)
