package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "granbokning",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "granbokning",
			Name:      "bookings_created_total",
			Help:      "Bookings successfully persisted.",
		},
	)

	emails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "granbokning",
			Name:      "confirmation_emails_total",
			Help:      "Confirmation email attempts by outcome.",
		},
		[]string{"outcome"},
	)

	toggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "granbokning",
			Name:      "pickup_toggles_total",
			Help:      "Committed picked-up flips by direction.",
		},
		[]string{"direction"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, emails, toggles)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

func IncBookingCreated() {
	bookingsCreated.Inc()
}

func IncEmailSent() {
	emails.WithLabelValues("sent").Inc()
}

func IncEmailFailed() {
	emails.WithLabelValues("failed").Inc()
}

// IncToggle records a committed flip; direction is "picked_up" or "reopened".
func IncToggle(direction string) {
	toggles.WithLabelValues(direction).Inc()
}
