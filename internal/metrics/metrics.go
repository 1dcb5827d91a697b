package metrics

import (
	"github.com/Domenick1991/airticket/internal/domain"
	"github.com/Domenick1991/airticket/internal/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BookingsTotal counts booking attempts by outcome kind.
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airticket",
			Name:      "bookings_total",
			Help:      "The total number of booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CancellationsTotal counts cancellation attempts by outcome kind.
	CancellationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airticket",
			Name:      "cancellations_total",
			Help:      "The total number of cancellation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// CompensationFailures counts reservations that could not be released
	// after a failed booking and need manual reconciliation.
	CompensationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "airticket",
			Name:      "compensation_failures_total",
			Help:      "Seat releases that failed after a booking could not be persisted",
		},
	)

	// NotificationsTotal counts per-recipient notification attempts.
	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "airticket",
			Name:      "notifications_total",
			Help:      "Per-recipient notification attempts by event type and result",
		},
		[]string{"type", "result"},
	)

	// BreakerState is 0 for closed, 1 for half-open and 2 for open.
	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "airticket",
			Name:      "breaker_state",
			Help:      "Circuit breaker phase per dependency (0 closed, 1 half-open, 2 open)",
		},
		[]string{"dependency"},
	)
)

func ObserveBooking(err error) {
	BookingsTotal.WithLabelValues(domain.Kind(err)).Inc()
}

func ObserveCancellation(err error) {
	CancellationsTotal.WithLabelValues(domain.Kind(err)).Inc()
}

// RecordBreakerState matches resilience.Settings.OnStateChange.
func RecordBreakerState(name string, _, to resilience.State) {
	BreakerState.WithLabelValues(name).Set(float64(to))
}
