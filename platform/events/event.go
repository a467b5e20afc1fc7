// Package events is the in-process publish/subscribe bus that lets the
// leads context notify the handover context without importing it.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event. EventName is the
// subscription key.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by concrete events.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId,omitempty"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC()}
}

// NewActorEvent stamps the event with the acting user.
func NewActorEvent(actorID string) BaseEvent {
	return BaseEvent{Timestamp: time.Now().UTC(), ActorID: actorID}
}

type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus delivers events to the handlers subscribed under their name.
type Bus interface {
	// Publish returns immediately; handlers run in the background.
	Publish(ctx context.Context, event Event)
	// PublishSync runs handlers in order and returns their joined errors.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
