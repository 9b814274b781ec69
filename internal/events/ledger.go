package events

import (
	"context"
	"errors"
	"time"

	"eventpass/internal/metrics"
	"eventpass/pkg/logger"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrCapacityOver  = errors.New("capacity over")
)

// CapacityStore runs fn inside one atomic read-modify-write on an event's
// taken capacity. fn receives the locked values and returns the value to
// store; an error from fn aborts without writing. A missing event must be
// reported as ErrEventNotFound.
type CapacityStore interface {
	UpdateTakenCapacity(ctx context.Context, eventID string, fn func(taken int, capacity *int) (int, error)) error
}

// NextTakenCapacity applies delta to taken. The result never drops below zero
// and may not exceed capacity when the adjustment consumes headcount.
// Releases (delta <= 0) skip the bound so they succeed even after capacity
// was lowered below taken.
func NextTakenCapacity(taken int, capacity *int, delta int) (int, error) {
	next := taken + delta
	if next < 0 {
		next = 0
	}
	if delta > 0 && capacity != nil && next > *capacity {
		return taken, ErrCapacityOver
	}
	return next, nil
}

// Ledger is the only writer of Event.TakenCapacity
type Ledger struct {
	store CapacityStore
	log   *logger.Logger
}

func NewLedger(store CapacityStore, log *logger.Logger) *Ledger {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Ledger{store: store, log: log}
}

// AdjustCapacity atomically moves the event's taken capacity by delta.
// Failures are reported, never retried.
func (l *Ledger) AdjustCapacity(ctx context.Context, eventID string, delta int) CapacityStatus {
	start := time.Now()
	err := l.store.UpdateTakenCapacity(ctx, eventID, func(taken int, capacity *int) (int, error) {
		return NextTakenCapacity(taken, capacity, delta)
	})
	metrics.LedgerDuration.Observe(time.Since(start).Seconds())

	status := capacityStatusFor(err)
	metrics.CapacityAdjustments.WithLabelValues(status.String()).Inc()

	switch status {
	case CapacityReserved:
	case CapacityTransactionFailed:
		l.log.ErrorWithContext(ctx, "Capacity transaction failed", err, map[string]interface{}{
			"event_id": eventID,
			"delta":    delta,
		})
	default:
		l.log.LogCapacityRejected(ctx, eventID, delta, status.String())
	}

	return status
}

func capacityStatusFor(err error) CapacityStatus {
	switch {
	case err == nil:
		return CapacityReserved
	case errors.Is(err, ErrCapacityOver):
		return CapacityOver
	case errors.Is(err, ErrEventNotFound):
		return CapacityEventNotFound
	default:
		return CapacityTransactionFailed
	}
}
