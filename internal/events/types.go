// Package events provides a one-way asynchronous notification bus from the
// ingestion worker to downstream consumers. Publishing never blocks the
// worker: when the buffer is full the notification is counted as dropped.
package events

import (
	"time"

	"github.com/DrewThomasson/sound-monitor/internal/datastore"
	"github.com/google/uuid"
)

// Type identifies the kind of notification carried on the bus.
type Type string

const (
	// TypeEvent is emitted for every finalized noise event.
	TypeEvent Type = "event"
	// TypeExtreme is additionally emitted when an event's peak exceeds the
	// detection threshold by the configured margin.
	TypeExtreme Type = "extreme"
	// TypeStatus carries informational pipeline state changes.
	TypeStatus Type = "status"
	// TypeError carries non-fatal processing errors.
	TypeError Type = "error"
)

// Notification is an immutable snapshot handed across the bus. Consumers
// must not mutate it.
type Notification struct {
	ID        string
	Type      Type
	Timestamp time.Time
	Message   string
	Event     *datastore.NoiseEvent // nil for status and error notifications
}

// New creates a notification with a fresh ID and the current time.
func New(notifType Type, message string, event *datastore.NoiseEvent) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      notifType,
		Timestamp: time.Now(),
		Message:   message,
		Event:     event,
	}
}
