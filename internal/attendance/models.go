package attendance

import (
	"strings"
	"time"

	"eventpass/internal/reservations"
	"eventpass/internal/tickets"
)

// NoRoom is recorded as the origin of a ticket's first movement
const NoRoom = "undefined"

// Operation is the direction of a tracked movement
type Operation string

const (
	OperationEnter Operation = "enter"
	OperationExit  Operation = "exit"
)

// IsValid checks if the operation is known
func (o Operation) IsValid() bool {
	return o == OperationEnter || o == OperationExit
}

// String returns the string representation of the operation
func (o Operation) String() string {
	return string(o)
}

// ParseOperation accepts "enter" and "exit" in any case
func ParseOperation(raw string) (Operation, bool) {
	op := Operation(strings.ToLower(strings.TrimSpace(raw)))
	return op, op.IsValid()
}

// Room is a trackable location inside an event venue
type Room struct {
	ID                     string   `json:"room_id" gorm:"primaryKey;size:128"`
	DisplayName            string   `json:"display_name" gorm:"not null;size:255"`
	Capacity               *int     `json:"capacity,omitempty"`
	PermittedTicketTypeIDs []string `json:"permitted_ticket_types" gorm:"serializer:json;type:jsonb;not null"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Permits reports whether tickets of the given type may be tracked into the room
func (r *Room) Permits(ticketTypeID string) bool {
	for _, id := range r.PermittedTicketTypeIDs {
		if id == ticketTypeID {
			return true
		}
	}
	return false
}

// TicketLocation is a ticket's current-room pointer. RoomID is nil until the first movement.
type TicketLocation struct {
	TicketID  string    `json:"ticket_id" gorm:"primaryKey;size:64"`
	RoomID    *string   `json:"room_id" gorm:"size:128;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TrackEntry is one immutable line of a ticket's movement history
type TrackEntry struct {
	ID            uint64    `json:"-" gorm:"primaryKey;autoIncrement"`
	TicketID      string    `json:"ticket_id" gorm:"not null;size:64;index"`
	Operation     Operation `json:"operation" gorm:"not null;size:16"`
	FromRoom      string    `json:"from_room" gorm:"not null;size:128"`
	ToRoom        string    `json:"to_room" gorm:"not null;size:128"`
	ReservationID string    `json:"reservation_id" gorm:"size:128"`
	CreatedAt     time.Time `json:"time" gorm:"autoCreateTime"`
}

// Movement describes one check-in or check-out to persist
type Movement struct {
	TicketID      string
	ToRoom        string
	Operation     Operation
	ReservationID string
}

// Wristband binds a physical band to a ticket exactly once
type Wristband struct {
	ID        string    `json:"wristband_id" gorm:"primaryKey;size:128"`
	UserID    string    `json:"reserver_id" gorm:"not null;size:128"`
	TicketID  string    `json:"ticket_id" gorm:"not null;size:64;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// LookupResult is everything staff can see about a ticket
type LookupResult struct {
	Tracks        []TrackEntry                      `json:"tracks"`
	Ticket        *tickets.Ticket                   `json:"ticket,omitempty"`
	ReservationID *string                           `json:"reserve_id"`
	Reservation   *reservations.ReservationResponse `json:"reservation"`
}
