package registration

import (
	"context"
	"time"
)

// EventType enumerates registration lifecycle events.
type EventType string

const (
	EventUserRegistered      EventType = "user.registered"
	EventUserActivated       EventType = "user.activated"
	EventSignupCodeConsumed  EventType = "registration.code.consumed"
	EventActivationExpired   EventType = "registration.activation.expired"
	EventRegistrationRefused EventType = "registration.refused"
)

// Event carries the identity of the account a lifecycle change applies to.
type Event struct {
	EventType  EventType
	UserID     string
	Email      string
	Metadata   map[string]any
	OccurredAt time.Time
}

// EventSink consumes registration events for downstream subscribers
// (analytics, welcome-email side flows). Sinks run best-effort: errors are
// logged by the emitter and never interrupt the workflow.
type EventSink interface {
	Record(ctx context.Context, event Event) error
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(ctx context.Context, event Event) error

// Record implements EventSink.
func (f EventSinkFunc) Record(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopEventSink struct{}

func (noopEventSink) Record(context.Context, Event) error {
	return nil
}

func normalizeEventSink(s EventSink) EventSink {
	if s == nil {
		return noopEventSink{}
	}
	return s
}

func emitEvent(ctx context.Context, sink EventSink, logger Logger, event Event) {
	sink = normalizeEventSink(sink)

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		logger.Error("event sink record error: %v", err)
	}
}
