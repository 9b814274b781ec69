package notifications

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LifecycleType names a reservation state change
type LifecycleType string

const (
	LifecycleReservationCreated   LifecycleType = "RESERVATION_CREATED"
	LifecycleReservationModified  LifecycleType = "RESERVATION_MODIFIED"
	LifecycleReservationCancelled LifecycleType = "RESERVATION_CANCELLED"
	LifecycleCapacityReconciled   LifecycleType = "CAPACITY_RECONCILED"
)

// LifecycleEvent is published after a reservation change commits
type LifecycleEvent struct {
	ID             string        `json:"id"`
	Type           LifecycleType `json:"type"`
	EventID        string        `json:"event_id"`
	ReservationID  string        `json:"reservation_id,omitempty"`
	UserID         string        `json:"user_id,omitempty"`
	TicketIDs      []string      `json:"ticket_ids,omitempty"`
	HeadcountDelta int           `json:"headcount_delta"`
	OccurredAt     time.Time     `json:"occurred_at"`
}

// NewLifecycleEvent stamps an id and time on a new event
func NewLifecycleEvent(t LifecycleType, eventID string) *LifecycleEvent {
	return &LifecycleEvent{
		ID:         uuid.NewString(),
		Type:       t,
		EventID:    eventID,
		OccurredAt: time.Now().UTC(),
	}
}

// GetPartitionKey keeps every change for one event on one partition
func (e *LifecycleEvent) GetPartitionKey() string {
	return e.EventID
}

// ToJSON serializes the event
func (e *LifecycleEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}
