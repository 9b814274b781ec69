package tickets

import (
	"context"
	"errors"
	"fmt"

	"eventpass/internal/events"
	"eventpass/internal/shared/ids"
)

// ErrInvalidTicketData marks a stored ticket whose references do not resolve
var ErrInvalidTicketData = errors.New("invalid ticket data")

// EventReader loads events by id
type EventReader interface {
	GetByID(ctx context.Context, id string) (*events.Event, error)
}

// Registry mints, resolves and destroys tickets. It never touches capacity.
type Registry struct {
	repo       Repository
	events     EventReader
	idAttempts int
}

func NewRegistry(repo Repository, events EventReader, idAttempts int) *Registry {
	return &Registry{repo: repo, events: events, idAttempts: idAttempts}
}

// Mint persists a new ticket under a freshly generated, unused id
func (r *Registry) Mint(ctx context.Context, req MintRequest) (*Ticket, error) {
	if req.Type == nil || req.Event == nil {
		return nil, fmt.Errorf("mint: %w", ErrInvalidTicketData)
	}

	id, err := ids.NewUnique(ctx, r.idAttempts, r.repo.TicketExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate ticket id: %w", err)
	}

	ticket := &Ticket{
		ID:            id,
		TicketTypeID:  req.Type.ID,
		EventID:       req.Event.ID,
		ReservationID: req.ReservationID,
		UserID:        req.UserID,
		Guests:        req.Guests,
		Headcount:     req.Guests.Headcount(),
	}
	if err := r.repo.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

// Delete removes ticket records
func (r *Registry) Delete(ctx context.Context, ticketIDs ...string) error {
	if err := r.repo.DeleteTickets(ctx, ticketIDs); err != nil {
		return fmt.Errorf("failed to delete tickets: %w", err)
	}
	return nil
}

// Resolve loads a ticket and follows its event and ticket type references
func (r *Registry) Resolve(ctx context.Context, ticketID string) (*ResolvedTicket, error) {
	ticket, err := r.repo.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	ticketType, err := r.repo.GetTicketType(ctx, ticket.TicketTypeID)
	if err != nil {
		if errors.Is(err, ErrTicketTypeNotFound) {
			return nil, fmt.Errorf("ticket %s type %s: %w", ticket.ID, ticket.TicketTypeID, ErrInvalidTicketData)
		}
		return nil, err
	}

	event, err := r.events.GetByID(ctx, ticket.EventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return nil, fmt.Errorf("ticket %s event %s: %w", ticket.ID, ticket.EventID, ErrInvalidTicketData)
		}
		return nil, err
	}

	return &ResolvedTicket{Ticket: *ticket, Type: ticketType, Event: event}, nil
}

// Load returns the tickets in the order given. Any missing id is corruption.
func (r *Registry) Load(ctx context.Context, ticketIDs []string) ([]Ticket, error) {
	found, err := r.repo.GetTickets(ctx, ticketIDs)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Ticket, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	ordered := make([]Ticket, 0, len(ticketIDs))
	for _, id := range ticketIDs {
		t, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("ticket %s missing: %w", id, ErrInvalidTicketData)
		}
		ordered = append(ordered, t)
	}
	return ordered, nil
}

// TicketType loads a single ticket type
func (r *Registry) TicketType(ctx context.Context, id string) (*TicketType, error) {
	return r.repo.GetTicketType(ctx, id)
}

// TicketTypes loads ticket types keyed by id
func (r *Registry) TicketTypes(ctx context.Context, typeIDs []string) (map[string]*TicketType, error) {
	found, err := r.repo.GetTicketTypes(ctx, typeIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*TicketType, len(found))
	for i := range found {
		out[found[i].ID] = &found[i]
	}
	return out, nil
}

// Summaries implements events.TicketTypeCatalog. Unknown ids are skipped.
func (r *Registry) Summaries(ctx context.Context, event *events.Event) ([]events.TicketTypeSummary, error) {
	byID, err := r.TicketTypes(ctx, event.TicketTypeIDs)
	if err != nil {
		return nil, err
	}
	out := make([]events.TicketTypeSummary, 0, len(event.TicketTypeIDs))
	for _, id := range event.TicketTypeIDs {
		if tt, ok := byID[id]; ok {
			out = append(out, tt.Summary(event))
		}
	}
	return out, nil
}

// TotalHeadcount sums headcount over tickets
func TotalHeadcount(tickets []Ticket) int {
	total := 0
	for _, t := range tickets {
		total += t.Headcount
	}
	return total
}

// IDs returns the ticket ids in order
func IDs(tickets []Ticket) []string {
	out := make([]string, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}
