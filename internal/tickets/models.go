package tickets

import (
	"time"

	"eventpass/internal/events"
	"eventpass/internal/groups"
)

// TicketType is a class of admission. RequireTwoFactor nil means the event decides.
type TicketType struct {
	ID               string         `json:"id" gorm:"primaryKey;size:128"`
	DisplayName      string         `json:"display_name" gorm:"not null;size:255"`
	Description      *string        `json:"description,omitempty" gorm:"type:text"`
	EligibleGroups   []groups.Group `json:"eligible_groups" gorm:"serializer:json;type:jsonb;not null"`
	RequireTwoFactor *bool          `json:"require_two_factor,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// IsAssignable reports whether group matches one of the eligible compositions
func (t *TicketType) IsAssignable(group groups.Group) bool {
	return groups.ContainsGroup(t.EligibleGroups, group)
}

// RequiresTwoFactor resolves the ticket type's flag, inheriting from event when unset
func (t *TicketType) RequiresTwoFactor(event *events.Event) bool {
	if t.RequireTwoFactor != nil {
		return *t.RequireTwoFactor
	}
	return event != nil && event.RequireTwoFactor
}

// DefaultGroup returns the only eligible group when there is exactly one
func (t *TicketType) DefaultGroup() (groups.Group, bool) {
	if len(t.EligibleGroups) != 1 {
		return nil, false
	}
	return t.EligibleGroups[0], true
}

// Summary converts the ticket type to its display form. The two-factor flag
// is resolved against event; with a nil event an unset flag reads as false.
func (t *TicketType) Summary(event *events.Event) events.TicketTypeSummary {
	eligible := make([][]string, len(t.EligibleGroups))
	for i, g := range t.EligibleGroups {
		names := make([]string, len(g))
		for j, guest := range g {
			names[j] = guest.String()
		}
		eligible[i] = names
	}
	return events.TicketTypeSummary{
		ID:               t.ID,
		DisplayName:      t.DisplayName,
		Description:      t.Description,
		EligibleGroups:   eligible,
		RequireTwoFactor: t.RequiresTwoFactor(event),
	}
}

// Ticket is one minted admission, owned by exactly one reservation
type Ticket struct {
	ID            string       `json:"id" gorm:"primaryKey;size:64"`
	TicketTypeID  string       `json:"ticket_type_id" gorm:"not null;size:128;index"`
	EventID       string       `json:"event_id" gorm:"not null;size:128;index"`
	ReservationID string       `json:"reservation_id" gorm:"not null;size:128;index:idx_tickets_owner"`
	UserID        string       `json:"user_id" gorm:"not null;size:128;index:idx_tickets_owner"`
	Guests        groups.Group `json:"guests" gorm:"serializer:json;type:jsonb;not null"`
	Headcount     int          `json:"headcount" gorm:"not null;check:headcount >= 0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// ResolvedTicket is a ticket with its references followed
type ResolvedTicket struct {
	Ticket
	Type  *TicketType   `json:"ticket_type"`
	Event *events.Event `json:"event"`
}

// MintRequest describes one ticket to create
type MintRequest struct {
	Type          *TicketType
	Event         *events.Event
	ReservationID string
	UserID        string
	Guests        groups.Group
}
