package reservations

import (
	"time"

	"eventpass/internal/tickets"
)

// ForceUserID owns reservations created through the force endpoint
const ForceUserID = "[force]"

// Reservation is keyed by (user, id). TicketIDs keeps the request order.
type Reservation struct {
	ID        string   `json:"reservation_id" gorm:"primaryKey;size:128"`
	UserID    string   `json:"user_id" gorm:"primaryKey;size:128"`
	EventID   string   `json:"event_id" gorm:"not null;size:128;index"`
	TicketIDs []string `json:"ticket_ids" gorm:"serializer:json;type:jsonb;not null"`
	IsForce   bool     `json:"is_force" gorm:"not null;default:false"`
	Note      *string  `json:"note,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// ReservationResponse is a reservation with its tickets dereferenced
type ReservationResponse struct {
	ReservationID string           `json:"reservation_id"`
	EventID       string           `json:"event_id"`
	Headcount     int              `json:"headcount"`
	Tickets       []tickets.Ticket `json:"tickets"`
	IsForce       bool             `json:"is_force,omitempty"`
	Note          *string          `json:"note,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToResponse pairs the reservation with its loaded tickets
func (r *Reservation) ToResponse(loaded []tickets.Ticket) ReservationResponse {
	return ReservationResponse{
		ReservationID: r.ID,
		EventID:       r.EventID,
		Headcount:     tickets.TotalHeadcount(loaded),
		Tickets:       loaded,
		IsForce:       r.IsForce,
		Note:          r.Note,
		CreatedAt:     r.CreatedAt,
	}
}

// ReserveResult is the outcome of Create or ForceReserve
type ReserveResult struct {
	Status      ReserveStatus
	Reservation *Reservation
	Tickets     []tickets.Ticket
	Replayed    bool
}

// ModifyResult is the outcome of Modify or Cancel
type ModifyResult struct {
	Status      ModifyStatus
	Reservation *Reservation
	Tickets     []tickets.Ticket
	Delta       int
}
