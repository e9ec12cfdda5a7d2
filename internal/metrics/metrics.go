// Package metrics holds the Prometheus collectors of the API and consumers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zenshe"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by method and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_created_total",
		Help:      "Reservations created.",
	})

	ReservationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_cancelled_total",
		Help:      "Reservations cancelled by clients or admins.",
	})

	ReservationsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reservations_completed_total",
		Help:      "Confirmed reservations marked terminee by the completion job.",
	})

	AvailabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "availability_checks_total",
		Help:      "Availability checks by result (available, unavailable).",
	}, []string{"result"})

	StoreOrders = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_orders_total",
		Help:      "Store pre-orders placed.",
	})

	EmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Transactional emails by template and result.",
	}, []string{"template", "result"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// AvailabilityResult labels an availability check.
func AvailabilityResult(available bool) string {
	if available {
		return "available"
	}
	return "unavailable"
}
