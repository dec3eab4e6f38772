package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a fact about a link that already happened in the store.
type Event interface {
	EventID() string
	EventName() string
	OccurredAt() time.Time
	// AggregateID is the short key of the link that raised the event.
	AggregateID() string
}

// Base carries the identity fields shared by every link event.
type Base struct {
	ID          string    `json:"event_id"`
	OccurredAtT time.Time `json:"occurred_at"`
	Key         string    `json:"key"`
}

func NewBase(key string) Base {
	return Base{
		ID:          uuid.Must(uuid.NewV7()).String(),
		OccurredAtT: time.Now().UTC(),
		Key:         key,
	}
}

func (e Base) EventID() string {
	return e.ID
}

func (e Base) OccurredAt() time.Time {
	return e.OccurredAtT
}

func (e Base) AggregateID() string {
	return e.Key
}
