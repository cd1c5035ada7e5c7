package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BookingsCreated counts accepted bookings by creation source.
	BookingsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_bookings_created_total",
		Help: "Bookings accepted, labelled by creation source.",
	}, []string{"source"})

	// LifecycleTransitions counts booking status transitions by target status.
	LifecycleTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_booking_transitions_total",
		Help: "Booking lifecycle transitions, labelled by resulting status.",
	}, []string{"to"})

	// ReconcilerTransitions counts bookings swept by the stale-state reconciler.
	ReconcilerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_reconciler_transitions_total",
		Help: "Stale bookings reconciled, labelled by resulting status.",
	}, []string{"to"})

	// ConcurrencyConflicts counts optimistic-lock losses on guarded updates.
	ConcurrencyConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hotel_concurrency_conflicts_total",
		Help: "Booking updates rejected by the status guard.",
	})

	// HTTPRequests counts handled HTTP requests by method, path and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hotel_http_requests_total",
		Help: "HTTP requests handled, labelled by method, route and status code.",
	}, []string{"method", "route", "status"})
)

// Handler exposes the default registry for the /metrics route.
func Handler() http.Handler {
	return promhttp.Handler()
}
