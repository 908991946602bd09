package event

import (
	"time"

	"github.com/google/uuid"
)

// Base carries identity and creation time for an event. Embed it in event
// structs; with event inheritance enabled, handlers registered for Base
// receive every event that embeds it.
type Base struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created, in UTC.
	Timestamp time.Time
}

// NewBase returns a Base with a fresh ID and the current time.
func NewBase() Base {
	return Base{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
	}
}
