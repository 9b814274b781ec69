package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CapacityAdjustments counts ledger calls by outcome
	CapacityAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_capacity_adjustments_total",
			Help: "Capacity ledger adjustments by resulting status",
		},
		[]string{"status"},
	)

	// ReservationOutcomes counts lifecycle results
	ReservationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_reservation_outcomes_total",
			Help: "Reservation create/modify/cancel results",
		},
		[]string{"operation", "status"},
	)

	// CheckInOuts counts attendance movements
	CheckInOuts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventpass_check_in_out_total",
			Help: "Room entries and exits by result",
		},
		[]string{"operation", "result"},
	)

	// ReconciledDrift records the absolute headcount corrected. Event ids go
	// to the log line only.
	ReconciledDrift = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventpass_reconciled_drift_total",
			Help: "Headcount corrected by the reconciler",
		},
	)

	// LedgerDuration tracks time spent inside the capacity transaction
	LedgerDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "eventpass_ledger_duration_seconds",
			Help:    "Duration of capacity ledger transactions",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)
)
