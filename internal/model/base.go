package model

import (
	"time"

	"github.com/google/uuid"
)

// Auditable carries identity and audit stamps shared by every catalog
// entity. Entities embed it instead of inheriting from a common root.
type Auditable struct {
	ID        string     `db:"id" json:"id"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

func NewAuditable() Auditable {
	now := time.Now()
	return Auditable{
		ID:        uuid.New().String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (a *Auditable) Touch() {
	a.UpdatedAt = time.Now()
}

// Event is one domain event pending publication. Events live on the
// aggregate that recorded them until the workflow drains them after a
// successful save; there is no global event bus.
type Event struct {
	Name        string      `json:"name"`
	AggregateID string      `json:"aggregate_id"`
	Payload     interface{} `json:"payload,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// EventRecorder is the pending-events list embedded by aggregates.
type EventRecorder struct {
	pending []Event
}

func (r *EventRecorder) Record(name, aggregateID string, payload interface{}) {
	r.pending = append(r.pending, Event{
		Name:        name,
		AggregateID: aggregateID,
		Payload:     payload,
		OccurredAt:  time.Now(),
	})
}

func (r *EventRecorder) Events() []Event {
	return r.pending
}

// DrainEvents returns and clears the pending list.
func (r *EventRecorder) DrainEvents() []Event {
	events := r.pending
	r.pending = nil
	return events
}
