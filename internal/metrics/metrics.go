package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tourism",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully created.",
		},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tourism",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings cancelled.",
		},
	)

	duplicateGuardTrips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tourism",
			Name:      "duplicate_booking_rejections_total",
			Help:      "Booking requests rejected by the duplicate guard.",
		},
	)

	paymentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tourism",
			Name:      "payment_transitions_total",
			Help:      "Payment status transitions by edge.",
		},
		[]string{"from", "to"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tourism",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by endpoint.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCreated,
			bookingsCancelled,
			duplicateGuardTrips,
			paymentTransitions,
			requestDuration,
		)
	})
}

// IncBookingCreated increments the created-bookings counter.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncBookingCancelled increments the cancelled-bookings counter.
func IncBookingCancelled() {
	bookingsCancelled.Inc()
}

// IncDuplicateGuard increments the duplicate-guard rejection counter.
func IncDuplicateGuard() {
	duplicateGuardTrips.Inc()
}

// IncPaymentTransition increments the counter for one payment edge.
func IncPaymentTransition(from, to string) {
	paymentTransitions.WithLabelValues(from, to).Inc()
}

// ObserveRequestDuration records one request's duration in seconds.
func ObserveRequestDuration(endpoint string, seconds float64) {
	requestDuration.WithLabelValues(endpoint).Observe(seconds)
}
