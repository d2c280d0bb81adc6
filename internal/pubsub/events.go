// Package pubsub provides a generic publish/subscribe event system used to
// carry selection, window lifecycle, store change and log events between the
// case browser components.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// SelectedEvent is published when the browsed selection changes.
	SelectedEvent EventType = "selected"
	// OpenedEvent is published when a viewer window is opened.
	OpenedEvent EventType = "opened"
	// ClosedEvent is published when a viewer window is closed.
	ClosedEvent EventType = "closed"
	// ChangedEvent is published when a backing store changed on disk.
	ChangedEvent EventType = "changed"
	// LoggedEvent carries a formatted log entry.
	LoggedEvent EventType = "logged"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
