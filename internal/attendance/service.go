package attendance

import (
	"context"
	"errors"
	"fmt"

	"eventpass/internal/metrics"
	"eventpass/internal/reservations"
	"eventpass/internal/tickets"
	"eventpass/pkg/logger"
)

// TicketResolver follows a ticket's references
type TicketResolver interface {
	Resolve(ctx context.Context, ticketID string) (*tickets.ResolvedTicket, error)
}

// ReservationReader loads a reservation owned by a user
type ReservationReader interface {
	GetReservation(ctx context.Context, userID, reservationID string) (*reservations.ReservationResponse, error)
}

type Service interface {
	CheckInOut(ctx context.Context, op Operation, roomID, ticketID string) (bool, error)
	GuestCount(ctx context.Context, roomID string) (int64, error)
	Lookup(ctx context.Context, ticketID string) (*LookupResult, error)
	BindWristband(ctx context.Context, wristbandID, userID, ticketID string) (bool, error)
	GetWristband(ctx context.Context, wristbandID string) (*Wristband, error)
}

type service struct {
	repo         Repository
	counter      GuestCounter
	tickets      TicketResolver
	reservations ReservationReader
	log          *logger.Logger

	checkExitEligibility bool
}

func NewService(repo Repository, counter GuestCounter, ticketResolver TicketResolver, reservationReader ReservationReader, checkExitEligibility bool, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:                 repo,
		counter:              counter,
		tickets:              ticketResolver,
		reservations:         reservationReader,
		log:                  log,
		checkExitEligibility: checkExitEligibility,
	}
}

// CheckInOut moves a ticket into roomID. It returns false without side effects
// when the ticket's type is not permitted in the room. A counter failure
// aborts the move so the room pointer and counts never disagree.
func (s *service) CheckInOut(ctx context.Context, op Operation, roomID, ticketID string) (bool, error) {
	if !op.IsValid() {
		return false, fmt.Errorf("unknown operation %q", op)
	}

	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return false, err
	}

	ticket, err := s.tickets.Resolve(ctx, ticketID)
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidTicketData) {
			s.log.LogDataCorruption(ctx, "ticket", ticketID, err)
		}
		return false, err
	}

	if op == OperationEnter || s.checkExitEligibility {
		if !room.Permits(ticket.TicketTypeID) {
			metrics.CheckInOuts.WithLabelValues(op.String(), "rejected").Inc()
			return false, nil
		}
	}

	headcount := ticket.Headcount
	applied := false
	from, err := s.repo.MoveTicket(ctx, Movement{
		TicketID:      ticket.ID,
		ToRoom:        room.ID,
		Operation:     op,
		ReservationID: ticket.ReservationID,
	}, func(from string) error {
		if err := s.counter.Move(ctx, from, room.ID, headcount); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		if applied {
			// The counters moved but the pointer did not commit
			if revertErr := s.counter.Move(context.WithoutCancel(ctx), room.ID, from, headcount); revertErr != nil {
				s.log.ErrorWithContext(ctx, "Failed to revert guest counts", revertErr, map[string]interface{}{
					"ticket_id": ticket.ID,
					"from_room": from,
					"to_room":   room.ID,
				})
			}
		}
		metrics.CheckInOuts.WithLabelValues(op.String(), "failed").Inc()
		return false, fmt.Errorf("failed to move ticket: %w", err)
	}

	metrics.CheckInOuts.WithLabelValues(op.String(), "ok").Inc()
	s.log.LogCheckInOut(ctx, op.String(), ticket.ID, from, room.ID, headcount)
	return true, nil
}

func (s *service) GuestCount(ctx context.Context, roomID string) (int64, error) {
	if _, err := s.repo.GetRoom(ctx, roomID); err != nil {
		return 0, err
	}
	return s.counter.Count(ctx, roomID)
}

// Lookup returns the track history even when the ticket itself is gone
func (s *service) Lookup(ctx context.Context, ticketID string) (*LookupResult, error) {
	tracks, err := s.repo.GetTrack(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	result := &LookupResult{Tracks: tracks}

	ticket, err := s.tickets.Resolve(ctx, ticketID)
	switch {
	case err == nil:
	case errors.Is(err, tickets.ErrTicketNotFound):
		return result, nil
	case errors.Is(err, tickets.ErrInvalidTicketData):
		s.log.LogDataCorruption(ctx, "ticket", ticketID, err)
		return result, nil
	default:
		return nil, err
	}

	result.Ticket = &ticket.Ticket
	reservationID := ticket.ReservationID
	result.ReservationID = &reservationID

	reservation, err := s.reservations.GetReservation(ctx, ticket.UserID, reservationID)
	switch {
	case err == nil:
		result.Reservation = reservation
	case errors.Is(err, reservations.ErrReservationNotFound), errors.Is(err, tickets.ErrInvalidTicketData):
	default:
		return nil, err
	}
	return result, nil
}

// BindWristband binds an unused band to an existing ticket
func (s *service) BindWristband(ctx context.Context, wristbandID, userID, ticketID string) (bool, error) {
	ticket, err := s.tickets.Resolve(ctx, ticketID)
	if err != nil {
		return false, err
	}

	return s.repo.BindWristband(ctx, &Wristband{
		ID:       wristbandID,
		UserID:   userID,
		TicketID: ticket.ID,
	})
}

func (s *service) GetWristband(ctx context.Context, wristbandID string) (*Wristband, error) {
	return s.repo.GetWristband(ctx, wristbandID)
}
