package reservations

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"eventpass/internal/events"
	"eventpass/internal/groups"
	"eventpass/internal/metrics"
	"eventpass/internal/notifications"
	"eventpass/internal/shared/clock"
	"eventpass/internal/shared/ids"
	"eventpass/internal/tickets"
	"eventpass/pkg/logger"
)

// EventStore reads events. Capacity values read here are never used for
// decisions; the ledger re-reads them under lock.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*events.Event, error)
}

// CapacityLedger is the single writer of taken capacity
type CapacityLedger interface {
	AdjustCapacity(ctx context.Context, eventID string, delta int) events.CapacityStatus
}

// TicketRegistry mints and destroys tickets
type TicketRegistry interface {
	Mint(ctx context.Context, req tickets.MintRequest) (*tickets.Ticket, error)
	Delete(ctx context.Context, ticketIDs ...string) error
	Load(ctx context.Context, ticketIDs []string) ([]tickets.Ticket, error)
	TicketTypes(ctx context.Context, typeIDs []string) (map[string]*tickets.TicketType, error)
}

// EventCache drops display data after capacity moves
type EventCache interface {
	Invalidate(ctx context.Context, eventID string)
}

type Service interface {
	SetPublisher(publisher notifications.Publisher)
	SetEventCache(cache EventCache)

	Reserve(ctx context.Context, userID string, req ReserveRequest) (*ReserveResult, error)
	ForceReserve(ctx context.Context, req ForceReserveRequest) (*ReserveResult, error)
	Modify(ctx context.Context, userID, reservationID string, req ModifyRequest) (*ModifyResult, error)
	Cancel(ctx context.Context, userID, reservationID string) (*ModifyResult, error)

	GetReservation(ctx context.Context, userID, reservationID string) (*ReservationResponse, error)
	ListReservations(ctx context.Context, userID string) ([]ReservationResponse, error)
}

type service struct {
	repo       Repository
	events     EventStore
	ledger     CapacityLedger
	registry   TicketRegistry
	publisher  notifications.Publisher
	eventCache EventCache
	clock      clock.Clock
	log        *logger.Logger
	idAttempts int
}

func NewService(repo Repository, eventStore EventStore, ledger CapacityLedger, registry TicketRegistry, clk clock.Clock, log *logger.Logger, idAttempts int) Service {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:       repo,
		events:     eventStore,
		ledger:     ledger,
		registry:   registry,
		publisher:  notifications.NoopPublisher{},
		clock:      clk,
		log:        log,
		idAttempts: idAttempts,
	}
}

// SetPublisher injects the lifecycle publisher
func (s *service) SetPublisher(publisher notifications.Publisher) {
	if publisher != nil {
		s.publisher = publisher
	}
}

// SetEventCache injects the browse cache invalidator
func (s *service) SetEventCache(cache EventCache) {
	s.eventCache = cache
}

type plannedTicket struct {
	ticketType *tickets.TicketType
	guests     groups.Group
}

type ticketPlan struct {
	tickets           []plannedTicket
	headcount         int
	requiresTwoFactor bool
}

// planTickets validates every requested ticket against the event. A non-empty
// status means the request is rejected as a whole.
func (s *service) planTickets(ctx context.Context, event *events.Event, requested []TicketRequest) (*ticketPlan, ReserveStatus, error) {
	plan := &ticketPlan{requiresTwoFactor: event.RequireTwoFactor}
	if len(requested) == 0 {
		return plan, "", nil
	}

	typeIDs := make([]string, 0, len(requested))
	for _, req := range requested {
		if !event.AllowsTicketType(req.TicketTypeID) {
			return nil, ReserveInvalidTicketType, nil
		}
		typeIDs = append(typeIDs, req.TicketTypeID)
	}

	types, err := s.registry.TicketTypes(ctx, typeIDs)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load ticket types: %w", err)
	}

	for _, req := range requested {
		ticketType, ok := types[req.TicketTypeID]
		if !ok {
			return nil, ReserveInvalidTicketType, nil
		}

		var guests groups.Group
		if len(req.Guests) == 0 {
			guests, ok = ticketType.DefaultGroup()
			if !ok {
				return nil, ReserveInvalidGroup, nil
			}
		} else {
			guests, err = groups.ParseGroup(req.Guests)
			if err != nil {
				return nil, ReserveInvalidGroup, nil
			}
		}
		if !ticketType.IsAssignable(guests) {
			return nil, ReserveInvalidGroup, nil
		}

		plan.tickets = append(plan.tickets, plannedTicket{ticketType: ticketType, guests: guests})
		plan.headcount += guests.Headcount()
		if ticketType.RequiresTwoFactor(event) {
			plan.requiresTwoFactor = true
		}
	}

	if event.MaxReservationsPerUser != nil && len(plan.tickets) > *event.MaxReservationsPerUser {
		return nil, ReserveExceedsUserLimit, nil
	}

	return plan, "", nil
}

// mintAll mints one ticket per planned entry in parallel, keeping request order.
// On failure it returns the tickets that were created so they can be removed.
func (s *service) mintAll(ctx context.Context, event *events.Event, userID, reservationID string, plan *ticketPlan) ([]tickets.Ticket, error) {
	minted := make([]*tickets.Ticket, len(plan.tickets))

	g, gctx := errgroup.WithContext(ctx)
	for i, planned := range plan.tickets {
		i, planned := i, planned
		g.Go(func() error {
			ticket, err := s.registry.Mint(gctx, tickets.MintRequest{
				Type:          planned.ticketType,
				Event:         event,
				ReservationID: reservationID,
				UserID:        userID,
				Guests:        planned.guests,
			})
			if err != nil {
				return err
			}
			minted[i] = ticket
			return nil
		})
	}
	err := g.Wait()

	out := make([]tickets.Ticket, 0, len(minted))
	for _, t := range minted {
		if t != nil {
			out = append(out, *t)
		}
	}
	return out, err
}

// compensate undoes a partially applied change. It runs detached from the
// request so a cancelled client cannot leave capacity consumed.
func (s *service) compensate(ctx context.Context, eventID string, delta int, minted []tickets.Ticket) {
	ctx = context.WithoutCancel(ctx)

	if len(minted) > 0 {
		if err := s.registry.Delete(ctx, tickets.IDs(minted)...); err != nil {
			s.log.ErrorWithContext(ctx, "Failed to delete tickets during compensation", err, map[string]interface{}{
				"event_id": eventID,
				"tickets":  tickets.IDs(minted),
			})
		}
	}

	if delta != 0 {
		if status := s.ledger.AdjustCapacity(ctx, eventID, -delta); !status.OK() {
			s.log.ErrorContext(ctx, "Failed to revert capacity; reconciler will correct it",
				"event_id", eventID,
				"delta", -delta,
				"status", status.String(),
			)
		}
	}
}

func (s *service) afterChange(ctx context.Context, t notifications.LifecycleType, reservation *Reservation, delta int) {
	if s.eventCache != nil {
		s.eventCache.Invalidate(ctx, reservation.EventID)
	}

	event := notifications.NewLifecycleEvent(t, reservation.EventID)
	event.ReservationID = reservation.ID
	event.UserID = reservation.UserID
	event.TicketIDs = reservation.TicketIDs
	event.HeadcountDelta = delta
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WarnContext(ctx, "Failed to publish lifecycle event",
			"type", string(t),
			"reservation_id", reservation.ID,
			"error", err,
		)
	}
}

func (s *service) Reserve(ctx context.Context, userID string, req ReserveRequest) (*ReserveResult, error) {
	result, err := s.reserve(ctx, userID, req.ReservationID, req.EventID, req.Tickets, req.TwoFactorKey, false, nil)
	recordReserve("reserve", result, err)
	return result, err
}

func (s *service) ForceReserve(ctx context.Context, req ForceReserveRequest) (*ReserveResult, error) {
	var note *string
	if req.Note != "" {
		note = &req.Note
	}
	result, err := s.reserve(ctx, ForceUserID, req.ReservationID, req.EventID, req.Tickets, "", true, note)
	recordReserve("force_reserve", result, err)
	return result, err
}

// reserve implements Create. Forced reservations skip the timing, two-factor,
// duplicate and prerequisite checks but still go through the ledger.
func (s *service) reserve(ctx context.Context, userID, reservationID, eventID string, requested []TicketRequest, twoFactorKey string, force bool, note *string) (*ReserveResult, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			return &ReserveResult{Status: ReserveEventNotFound}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	var held []Reservation
	if !force {
		held, err = s.repo.ListByUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list reservations: %w", err)
		}
		if reservationID != "" {
			for i := range held {
				if held[i].ID != reservationID {
					continue
				}
				if held[i].EventID != event.ID {
					return &ReserveResult{Status: ReserveAlreadyReserved}, nil
				}
				return s.replay(ctx, &held[i])
			}
		}
	}

	if !force && !event.IsOpenForReservation(s.clock.Now()) {
		return &ReserveResult{Status: ReserveNotAvailable}, nil
	}

	plan, status, err := s.planTickets(ctx, event, requested)
	if err != nil {
		return nil, err
	}
	if status != "" {
		return &ReserveResult{Status: status}, nil
	}
	if plan.headcount < 1 {
		return &ReserveResult{Status: ReserveInvalidGroup}, nil
	}

	if !force {
		if plan.requiresTwoFactor && !event.VerifyTwoFactorKey(twoFactorKey) {
			return &ReserveResult{Status: ReserveInvalidTwoFactorKey}, nil
		}
		for i := range held {
			if held[i].EventID == event.ID {
				return &ReserveResult{Status: ReserveAlreadyReserved}, nil
			}
		}
		if event.RequiredEventID != nil && !holdsEvent(held, *event.RequiredEventID) {
			return &ReserveResult{Status: ReserveNotReservedRequiredEvent}, nil
		}
	}

	if reservationID == "" {
		reservationID, err = ids.NewUnique(ctx, s.idAttempts, func(ctx context.Context, id string) (bool, error) {
			return s.repo.Exists(ctx, userID, id)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to allocate reservation id: %w", err)
		}
	}

	if capacity := s.ledger.AdjustCapacity(ctx, event.ID, plan.headcount); !capacity.OK() {
		return &ReserveResult{Status: reserveStatusFromCapacity(capacity)}, nil
	}

	minted, err := s.mintAll(ctx, event, userID, reservationID, plan)
	if err != nil {
		s.compensate(ctx, event.ID, plan.headcount, minted)
		return nil, fmt.Errorf("failed to mint tickets: %w", err)
	}

	reservation := &Reservation{
		ID:        reservationID,
		UserID:    userID,
		EventID:   event.ID,
		TicketIDs: tickets.IDs(minted),
		IsForce:   force,
		Note:      note,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		s.compensate(ctx, event.ID, plan.headcount, minted)
		if errors.Is(err, ErrDuplicateReservation) {
			return &ReserveResult{Status: ReserveAlreadyReserved}, nil
		}
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}

	s.log.LogReservationCreated(ctx, reservation.ID, event.ID, userID, plan.headcount)
	s.afterChange(ctx, notifications.LifecycleReservationCreated, reservation, plan.headcount)

	return &ReserveResult{Status: ReserveReserved, Reservation: reservation, Tickets: minted}, nil
}

// replay answers a repeated Create for a reservation that already exists
func (s *service) replay(ctx context.Context, reservation *Reservation) (*ReserveResult, error) {
	loaded, err := s.registry.Load(ctx, reservation.TicketIDs)
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidTicketData) {
			s.log.LogDataCorruption(ctx, "reservation", reservation.ID, err)
		} else {
			return nil, err
		}
	}
	return &ReserveResult{Status: ReserveReserved, Reservation: reservation, Tickets: loaded, Replayed: true}, nil
}

func holdsEvent(held []Reservation, eventID string) bool {
	for i := range held {
		if held[i].EventID == eventID {
			return true
		}
	}
	return false
}

func (s *service) Modify(ctx context.Context, userID, reservationID string, req ModifyRequest) (*ModifyResult, error) {
	result, err := s.modify(ctx, userID, reservationID, req)
	recordModify("modify", result, err)
	return result, err
}

func (s *service) modify(ctx context.Context, userID, reservationID string, req ModifyRequest) (*ModifyResult, error) {
	if len(req.Tickets) == 0 {
		return &ModifyResult{Status: ModifyInvalidModifyData}, nil
	}

	reservation, err := s.repo.Get(ctx, userID, reservationID)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return &ModifyResult{Status: ModifyReservationNotFound}, nil
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	event, err := s.events.GetByID(ctx, reservation.EventID)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			s.log.LogDataCorruption(ctx, "reservation", reservation.ID, err)
			return &ModifyResult{Status: ModifyInvalidReservationData}, nil
		}
		return nil, fmt.Errorf("failed to load event: %w", err)
	}

	if event.HasStarted(s.clock.Now()) {
		return &ModifyResult{Status: ModifyEventAlreadyStarted}, nil
	}

	plan, status, err := s.planTickets(ctx, event, req.Tickets)
	if err != nil {
		return nil, err
	}
	if status != "" {
		return &ModifyResult{Status: modifyStatusFromPlan(status)}, nil
	}
	if plan.headcount < 1 {
		return &ModifyResult{Status: ModifyInvalidModifyData}, nil
	}
	if plan.requiresTwoFactor && !event.VerifyTwoFactorKey(req.TwoFactorKey) {
		return &ModifyResult{Status: ModifyInvalidTwoFactorKey}, nil
	}

	existing, err := s.registry.Load(ctx, reservation.TicketIDs)
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidTicketData) {
			s.log.LogDataCorruption(ctx, "reservation", reservation.ID, err)
			return &ModifyResult{Status: ModifyInvalidReservationData}, nil
		}
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	delta := plan.headcount - tickets.TotalHeadcount(existing)
	if delta != 0 {
		if capacity := s.ledger.AdjustCapacity(ctx, event.ID, delta); !capacity.OK() {
			return &ModifyResult{Status: modifyStatusFromCapacity(capacity)}, nil
		}
	}

	minted, err := s.mintAll(ctx, event, userID, reservation.ID, plan)
	if err != nil {
		s.compensate(ctx, event.ID, delta, minted)
		return nil, fmt.Errorf("failed to mint tickets: %w", err)
	}

	newIDs := tickets.IDs(minted)
	if err := s.repo.UpdateTickets(ctx, userID, reservation.ID, reservation.TicketIDs, newIDs); err != nil {
		s.compensate(ctx, event.ID, delta, minted)
		switch {
		case errors.Is(err, ErrReservationConflict):
			s.log.WarnContext(ctx, "Reservation changed during modify",
				"reservation_id", reservation.ID,
			)
			return &ModifyResult{Status: ModifyTransactionFailed}, nil
		case errors.Is(err, ErrReservationNotFound):
			return &ModifyResult{Status: ModifyReservationNotFound}, nil
		}
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}
	reservation.TicketIDs = newIDs

	// Old tickets are unreferenced now; a failed delete leaves orphans only
	if err := s.registry.Delete(ctx, tickets.IDs(existing)...); err != nil {
		s.log.WarnContext(ctx, "Failed to delete replaced tickets",
			"reservation_id", reservation.ID,
			"error", err,
		)
	}

	s.log.LogReservationModified(ctx, reservation.ID, event.ID, userID, delta)
	s.afterChange(ctx, notifications.LifecycleReservationModified, reservation, delta)

	return &ModifyResult{Status: ModifyModified, Reservation: reservation, Tickets: minted, Delta: delta}, nil
}

func (s *service) Cancel(ctx context.Context, userID, reservationID string) (*ModifyResult, error) {
	result, err := s.cancel(ctx, userID, reservationID)
	recordModify("cancel", result, err)
	return result, err
}

// cancel claims the record first and only then releases capacity, so a
// concurrent cancel or modify of the same reservation cannot release twice.
// A crash after the delete leaves capacity over-consumed until reconciled.
func (s *service) cancel(ctx context.Context, userID, reservationID string) (*ModifyResult, error) {
	reservation, err := s.repo.Get(ctx, userID, reservationID)
	if err != nil {
		if errors.Is(err, ErrReservationNotFound) {
			return &ModifyResult{Status: ModifyReservationNotFound}, nil
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	existing, err := s.registry.Load(ctx, reservation.TicketIDs)
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidTicketData) {
			s.log.LogDataCorruption(ctx, "reservation", reservation.ID, err)
			return &ModifyResult{Status: ModifyInvalidReservationData}, nil
		}
		return nil, fmt.Errorf("failed to load tickets: %w", err)
	}

	if err := s.repo.Delete(ctx, userID, reservation.ID, reservation.TicketIDs); err != nil {
		switch {
		case errors.Is(err, ErrReservationNotFound):
			return &ModifyResult{Status: ModifyReservationNotFound}, nil
		case errors.Is(err, ErrReservationConflict):
			s.log.WarnContext(ctx, "Reservation changed during cancel",
				"reservation_id", reservation.ID,
			)
			return &ModifyResult{Status: ModifyTransactionFailed}, nil
		}
		return nil, fmt.Errorf("failed to delete reservation: %w", err)
	}

	released := tickets.TotalHeadcount(existing)
	if released > 0 {
		if capacity := s.ledger.AdjustCapacity(context.WithoutCancel(ctx), reservation.EventID, -released); !capacity.OK() {
			s.log.ErrorContext(ctx, "Failed to release capacity; reconciler will correct it",
				"reservation_id", reservation.ID,
				"event_id", reservation.EventID,
				"delta", -released,
				"status", capacity.String(),
			)
		}
	}

	if err := s.registry.Delete(ctx, reservation.TicketIDs...); err != nil {
		s.log.WarnContext(ctx, "Failed to delete cancelled tickets",
			"reservation_id", reservation.ID,
			"error", err,
		)
	}

	s.log.LogReservationCancelled(ctx, reservation.ID, reservation.EventID, userID, released)
	s.afterChange(ctx, notifications.LifecycleReservationCancelled, reservation, -released)

	return &ModifyResult{Status: ModifyCancelled, Reservation: reservation, Delta: -released}, nil
}

func (s *service) GetReservation(ctx context.Context, userID, reservationID string) (*ReservationResponse, error) {
	reservation, err := s.repo.Get(ctx, userID, reservationID)
	if err != nil {
		return nil, err
	}
	loaded, err := s.registry.Load(ctx, reservation.TicketIDs)
	if err != nil {
		if errors.Is(err, tickets.ErrInvalidTicketData) {
			s.log.LogDataCorruption(ctx, "reservation", reservation.ID, err)
		}
		return nil, err
	}
	resp := reservation.ToResponse(loaded)
	return &resp, nil
}

func (s *service) ListReservations(ctx context.Context, userID string) ([]ReservationResponse, error) {
	held, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]ReservationResponse, 0, len(held))
	for i := range held {
		loaded, err := s.registry.Load(ctx, held[i].TicketIDs)
		if err != nil {
			if errors.Is(err, tickets.ErrInvalidTicketData) {
				s.log.LogDataCorruption(ctx, "reservation", held[i].ID, err)
				continue
			}
			return nil, err
		}
		out = append(out, held[i].ToResponse(loaded))
	}
	return out, nil
}

func recordReserve(operation string, result *ReserveResult, err error) {
	status := "INTERNAL_EXCEPTION"
	if err == nil && result != nil {
		status = result.Status.String()
	}
	metrics.ReservationOutcomes.WithLabelValues(operation, status).Inc()
}

func recordModify(operation string, result *ModifyResult, err error) {
	status := "INTERNAL_EXCEPTION"
	if err == nil && result != nil {
		status = result.Status.String()
	}
	metrics.ReservationOutcomes.WithLabelValues(operation, status).Inc()
}
