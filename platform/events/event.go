// Package events provides the in-process event bus that lets modules react to
// each other without importing each other.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName is the routing key, e.g. "leads.lead.deleted".
	EventName() string
	EventID() uuid.UUID
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields. Embed it and call NewBaseEvent.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) EventID() uuid.UUID    { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a fresh ID and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to one event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus routes events to the handlers subscribed to their name.
type Bus interface {
	// Publish is fire-and-forget; handlers run after the caller returns.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers before returning and reports their errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
