// Package events carries domain events between modules inside one
// process. Definitions of the events themselves live with the domains;
// this package only provides the plumbing.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type; subscriptions key on it.
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent supplies the timestamp shared by all events. Embed it and
// implement EventName on the concrete type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events of a single type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the wrapped function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes events and routes them to subscribed handlers.
type Bus interface {
	// Publish fans the event out to its subscribers without waiting;
	// handler failures never reach the publisher.
	Publish(ctx context.Context, event Event)

	// PublishSync runs the subscribers inline and returns the first
	// handler error. Intended for tests and shutdown paths.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under an event name, which must
	// match what the event's EventName returns.
	Subscribe(eventName string, handler Handler)
}
