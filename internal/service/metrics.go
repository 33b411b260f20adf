package service

import "github.com/prometheus/client_golang/prometheus"

var (
	bookingsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Bookings committed",
	})
	bookingConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "booking_conflicts_total",
		Help: "Booking attempts rejected by the overlap check",
	})
	bookingTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_status_transitions_total",
		Help: "Committed booking status changes",
	}, []string{"status"})
	notificationFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_failures_total",
		Help: "Email notifications that failed and rolled back their mutation",
	})
)

func init() {
	prometheus.MustRegister(bookingsCreated, bookingConflicts, bookingTransitions, notificationFailures)
}
