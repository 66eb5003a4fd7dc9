package metrics

import (
	"errors"

	"challenge-stake-go/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_operations_total",
			Help: "Total number of core operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stake_operation_duration_seconds",
			Help:    "Histogram of core operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	SettlementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_settlements_total",
			Help: "Total number of challenge settlements by final status",
		},
		[]string{"status"},
	)

	VerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_verifications_total",
			Help: "Total number of report verification transitions by new status",
		},
		[]string{"status"},
	)

	DonatedAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stake_donated_amount_total",
			Help: "Sum of all donated amounts in ledger currency units",
		},
	)

	NotificationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stake_notification_failures_total",
			Help: "Total number of notifications that could not be handed to a sink",
		},
	)

	ExpirySweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stake_expiry_sweeps_total",
			Help: "Total number of expiry sweeps by outcome",
		},
		[]string{"outcome"},
	)
)

// Outcome maps an error onto a bounded label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrForbidden):
		return "forbidden"
	case errors.Is(err, store.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, store.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, store.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, store.ErrAlreadyTerminal):
		return "already_terminal"
	case errors.Is(err, store.ErrConcurrentModification):
		return "conflict"
	case errors.Is(err, store.ErrDuplicateReference):
		return "duplicate"
	}
	return "error"
}

// Observe records the outcome of one operation.
func Observe(operation string, seconds float64, err error) {
	OperationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	OperationDuration.WithLabelValues(operation).Observe(seconds)
}
