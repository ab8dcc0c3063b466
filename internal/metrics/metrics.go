package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingproxy",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	upstreamCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingproxy",
			Name:      "upstream_calls_total",
			Help:      "Outbound upstream calls by service and outcome.",
		},
		[]string{"service", "outcome"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bookingproxy",
			Name:      "bookings_total",
			Help:      "Finalized bookings by terminal state.",
		},
		[]string{"state"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, upstreamCalls, bookings)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint string, status int) {
	httpRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// IncUpstream increments the upstream-call counter.
func IncUpstream(service, outcome string) {
	upstreamCalls.WithLabelValues(service, outcome).Inc()
}

// IncBooking increments the booking terminal-state counter.
func IncBooking(state string) {
	bookings.WithLabelValues(state).Inc()
}
