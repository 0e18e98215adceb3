// Package events provides the in-process event bus the domain modules use
// to talk to each other without importing one another. Auth publishes
// registrations, courses publish publications, enrollments publish
// sign-ups; subscribers like the notify module react to them.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event carried on the bus.
type Event interface {
	// EventName identifies the event type, namespaced by module
	// (e.g. "auth.user.registered", "courses.course.published").
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent carries the occurrence timestamp; concrete events embed it and
// add their own payload fields.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events to registered handlers.
type Bus interface {
	// Publish dispatches the event to every handler subscribed to its
	// name. Handlers run asynchronously; a failing handler is logged,
	// never surfaced to the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync dispatches the event and waits for every handler,
	// joining their errors.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name as returned by
	// Event.EventName.
	Subscribe(eventName string, handler Handler)
}
