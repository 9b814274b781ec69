package events

import (
	"crypto/subtle"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Event is a capacity-bounded, time-windowed thing users reserve against.
// TakenCapacity is written only by the capacity ledger.
type Event struct {
	ID                     string     `json:"id" gorm:"primaryKey;size:128"`
	DisplayName            string     `json:"display_name" gorm:"not null;size:255"`
	Description            *string    `json:"description,omitempty" gorm:"type:text"`
	DateStart              time.Time  `json:"date_start" gorm:"not null;index"`
	DateEnd                *time.Time `json:"date_end,omitempty"`
	AvailableAt            *time.Time `json:"available_at,omitempty"`
	Capacity               *int       `json:"capacity,omitempty" gorm:"check:capacity IS NULL OR capacity >= 0"`
	TakenCapacity          int        `json:"taken_capacity" gorm:"not null;default:0;check:taken_capacity >= 0"`
	RequiredEventID        *string    `json:"required_event_id,omitempty" gorm:"size:128"`
	TicketTypeIDs          []string   `json:"ticket_type_ids" gorm:"serializer:json;type:jsonb;not null"`
	RequireTwoFactor       bool       `json:"require_two_factor" gorm:"not null;default:false"`
	TwoFactorSecret        string     `json:"-" gorm:"size:255"`
	MaxReservationsPerUser *int       `json:"max_reservations_per_user,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// HasStarted reports whether the event start time has been reached
func (e *Event) HasStarted(now time.Time) bool {
	return !now.Before(e.DateStart)
}

// IsOpenForReservation is true between available_at (if any) and date_start
func (e *Event) IsOpenForReservation(now time.Time) bool {
	if e.AvailableAt != nil && e.AvailableAt.After(now) {
		return false
	}
	return !e.HasStarted(now)
}

// AllowsTicketType reports whether the ticket type is eligible for this event
func (e *Event) AllowsTicketType(ticketTypeID string) bool {
	for _, id := range e.TicketTypeIDs {
		if id == ticketTypeID {
			return true
		}
	}
	return false
}

// Remaining returns the unreserved capacity, or nil when unlimited
func (e *Event) Remaining() *int {
	if e.Capacity == nil {
		return nil
	}
	remaining := *e.Capacity - e.TakenCapacity
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// VerifyTwoFactorKey compares key with the stored secret. Secrets may be kept
// as bcrypt hashes; anything else is compared in constant time.
func (e *Event) VerifyTwoFactorKey(key string) bool {
	if e.TwoFactorSecret == "" || key == "" {
		return false
	}
	if strings.HasPrefix(e.TwoFactorSecret, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(e.TwoFactorSecret), []byte(key)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(e.TwoFactorSecret), []byte(key)) == 1
}

// TicketTypeSummary is the display form of an eligible ticket type
type TicketTypeSummary struct {
	ID               string     `json:"id"`
	DisplayName      string     `json:"display_name"`
	Description      *string    `json:"description,omitempty"`
	EligibleGroups   [][]string `json:"eligible_groups"`
	RequireTwoFactor bool       `json:"require_two_factor"`
}

// EventResponse is what browse endpoints return
type EventResponse struct {
	ID                     string              `json:"id"`
	DisplayName            string              `json:"display_name"`
	Description            *string             `json:"description,omitempty"`
	DateStart              time.Time           `json:"date_start"`
	DateEnd                *time.Time          `json:"date_end,omitempty"`
	AvailableAt            *time.Time          `json:"available_at,omitempty"`
	Capacity               *int                `json:"capacity,omitempty"`
	TakenCapacity          int                 `json:"taken_capacity"`
	Remaining              *int                `json:"remaining,omitempty"`
	RequiredEventID        *string             `json:"required_event_id,omitempty"`
	RequireTwoFactor       bool                `json:"require_two_factor"`
	MaxReservationsPerUser *int                `json:"max_reservations_per_user,omitempty"`
	TicketTypes            []TicketTypeSummary `json:"ticket_types,omitempty"`
}

// ToResponse converts an Event to its display form
func (e *Event) ToResponse() EventResponse {
	return EventResponse{
		ID:                     e.ID,
		DisplayName:            e.DisplayName,
		Description:            e.Description,
		DateStart:              e.DateStart,
		DateEnd:                e.DateEnd,
		AvailableAt:            e.AvailableAt,
		Capacity:               e.Capacity,
		TakenCapacity:          e.TakenCapacity,
		Remaining:              e.Remaining(),
		RequiredEventID:        e.RequiredEventID,
		RequireTwoFactor:       e.RequireTwoFactor,
		MaxReservationsPerUser: e.MaxReservationsPerUser,
	}
}
