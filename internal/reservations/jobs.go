package reservations

import (
	"context"
	"sync"
	"time"

	"eventpass/internal/events"
	"eventpass/internal/metrics"
	"eventpass/internal/notifications"
	"eventpass/pkg/logger"
)

// EventLister lists every event with its stored taken capacity
type EventLister interface {
	GetAll(ctx context.Context) ([]events.Event, error)
}

// ReconcilerConfig contains configuration for the capacity reconciler
type ReconcilerConfig struct {
	Interval time.Duration
}

// DefaultReconcilerConfig returns default reconciler configuration
func DefaultReconcilerConfig() *ReconcilerConfig {
	return &ReconcilerConfig{
		Interval: 10 * time.Minute,
	}
}

// Reconciler compares taken capacity with the headcount of stored
// reservations. Drift is only corrected after two consecutive runs observe
// the same value, so a reservation that is mid-flight is left alone.
type Reconciler struct {
	events    EventLister
	repo      Repository
	ledger    CapacityLedger
	publisher notifications.Publisher
	config    *ReconcilerConfig
	log       *logger.Logger

	mu      sync.Mutex
	pending map[string]int
	done    chan struct{}
	stop    sync.Once
}

// NewReconciler creates a new reconciler
func NewReconciler(eventLister EventLister, repo Repository, ledger CapacityLedger, publisher notifications.Publisher, config *ReconcilerConfig, log *logger.Logger) *Reconciler {
	if config == nil {
		config = DefaultReconcilerConfig()
	}
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &Reconciler{
		events:    eventLister,
		repo:      repo,
		ledger:    ledger,
		publisher: publisher,
		config:    config,
		log:       log.WithComponent("reconciler"),
		pending:   make(map[string]int),
		done:      make(chan struct{}),
	}
}

// Start runs the reconciler until Stop is called or ctx is done
func (r *Reconciler) Start(ctx context.Context) {
	r.log.Info("Starting capacity reconciler", "interval", r.config.Interval.String())
	go r.loop(ctx)
}

// Stop stops the background loop
func (r *Reconciler) Stop() {
	r.stop.Do(func() {
		close(r.done)
		r.log.Info("Capacity reconciler stopped")
	})
}

func (r *Reconciler) loop(ctx context.Context) {
	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Error("Error reconciling capacity", "error", err)
			}
		case <-r.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce performs one comparison pass and returns the number of events corrected
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	all, err := r.events.GetAll(ctx)
	if err != nil {
		return 0, err
	}
	expected, err := r.repo.ExpectedHeadcountByEvent(ctx)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]int)
	corrected := 0
	for i := range all {
		event := &all[i]
		drift := event.TakenCapacity - expected[event.ID]
		if drift == 0 {
			continue
		}

		previous, seen := r.pending[event.ID]
		if !seen || previous != drift {
			next[event.ID] = drift
			r.log.Warn("Capacity drift observed",
				"event_id", event.ID,
				"taken", event.TakenCapacity,
				"expected", expected[event.ID],
			)
			continue
		}

		status := r.ledger.AdjustCapacity(ctx, event.ID, -drift)
		if !status.OK() {
			next[event.ID] = drift
			r.log.Error("Failed to correct capacity drift",
				"event_id", event.ID,
				"drift", drift,
				"status", status.String(),
			)
			continue
		}

		corrected++
		metrics.ReconciledDrift.Add(float64(abs(drift)))
		r.log.Warn("Capacity drift corrected", "event_id", event.ID, "drift", drift)

		lifecycle := notifications.NewLifecycleEvent(notifications.LifecycleCapacityReconciled, event.ID)
		lifecycle.HeadcountDelta = -drift
		if err := r.publisher.Publish(ctx, lifecycle); err != nil {
			r.log.Warn("Failed to publish reconcile event", "event_id", event.ID, "error", err)
		}
	}
	r.pending = next

	return corrected, nil
}

// GetJobStatus returns the status of the reconciler
func (r *Reconciler) GetJobStatus() map[string]interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]int, len(r.pending))
	for id, drift := range r.pending {
		pending[id] = drift
	}
	return map[string]interface{}{
		"interval": r.config.Interval.String(),
		"pending":  pending,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
