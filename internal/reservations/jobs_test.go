package reservations

import (
	"context"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventpass/internal/events"
	"eventpass/internal/metrics"
	"eventpass/internal/notifications"
)

func reconciledDriftTotal(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.ReconciledDrift.Write(&m))
	return m.GetCounter().GetValue()
}

func newReconcilerFor(h *harness) *Reconciler {
	return NewReconciler(h.events, h.repo, events.NewLedger(h.events, quietLogger()), h.publisher, &ReconcilerConfig{Interval: time.Hour}, quietLogger())
}

func TestReconcilerCorrectsDriftSeenTwice(t *testing.T) {
	h := newHarness(newEvent("E", intPtr(10)))
	ctx := context.Background()

	_, err := h.service.Reserve(ctx, "alice", ReserveRequest{EventID: "E", Tickets: adults(2)})
	require.NoError(t, err)
	h.publisher.events = nil

	h.events.events["E"].TakenCapacity = 5
	r := newReconcilerFor(h)
	driftBefore := reconciledDriftTotal(t)

	corrected, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)
	assert.Equal(t, 5, h.events.taken("E"), "first sighting only records the drift")

	corrected, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)
	assert.Equal(t, 2, h.events.taken("E"))
	assert.Equal(t, 3.0, reconciledDriftTotal(t)-driftBefore)

	require.Len(t, h.publisher.events, 1)
	assert.Equal(t, notifications.LifecycleCapacityReconciled, h.publisher.events[0].Type)
	assert.Equal(t, -3, h.publisher.events[0].HeadcountDelta)

	corrected, err = r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)
}

func TestReconcilerIgnoresChangingDrift(t *testing.T) {
	h := newHarness(newEvent("E", nil))
	ctx := context.Background()
	r := newReconcilerFor(h)

	h.events.events["E"].TakenCapacity = 1
	_, err := r.RunOnce(ctx)
	require.NoError(t, err)

	h.events.events["E"].TakenCapacity = 2
	corrected, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, corrected)
	assert.Equal(t, 2, h.events.taken("E"))
	assert.Equal(t, map[string]int{"E": 2}, r.GetJobStatus()["pending"])
}

func TestReconcilerRaisesUndercount(t *testing.T) {
	h := newHarness(newEvent("E", intPtr(10)))
	ctx := context.Background()

	_, err := h.service.Reserve(ctx, "alice", ReserveRequest{EventID: "E", Tickets: adults(3)})
	require.NoError(t, err)
	h.events.events["E"].TakenCapacity = 1

	r := newReconcilerFor(h)
	_, err = r.RunOnce(ctx)
	require.NoError(t, err)
	corrected, err := r.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, corrected)
	assert.Equal(t, 3, h.events.taken("E"))
}

func TestReconcilerStopIsIdempotent(t *testing.T) {
	h := newHarness(newEvent("E", nil))
	r := newReconcilerFor(h)

	r.Start(context.Background())
	r.Stop()
	r.Stop()
}
