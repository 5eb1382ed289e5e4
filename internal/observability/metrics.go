package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	requestsTotal           *prometheus.CounterVec
	requestLatencySeconds   *prometheus.HistogramVec
	requestErrorsTotal      *prometheus.CounterVec
	eventsPublishedTotal    *prometheus.CounterVec
	eventFailuresTotal      *prometheus.CounterVec
	notificationsCreated    *prometheus.CounterVec
	aggregateVersionClashes prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the portal.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_request_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		requestErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_request_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_events_published_total",
			Help: "Aggregate events published on the fan-out bus, by kind.",
		}, []string{"kind"})

		eventFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_event_delivery_failures_total",
			Help: "Fan-out handler failures, by event kind.",
		}, []string{"kind"})

		notificationsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_notifications_created_total",
			Help: "Notifications written to the store, by type.",
		}, []string{"type"})

		aggregateVersionClashes = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_aggregate_version_conflicts_total",
			Help: "Student aggregate saves rejected by the version check.",
		})

		prometheus.MustRegister(
			requestsTotal,
			requestLatencySeconds,
			requestErrorsTotal,
			eventsPublishedTotal,
			eventFailuresTotal,
			notificationsCreated,
			aggregateVersionClashes,
		)
	})
}

// Requests exposes the request counter.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// RequestLatency exposes the request latency histogram.
func RequestLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return requestLatencySeconds
}

// RequestErrors exposes the error response counter.
func RequestErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return requestErrorsTotal
}

// EventsPublished exposes the fan-out publish counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// EventDeliveryFailures exposes the fan-out failure counter.
func EventDeliveryFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return eventFailuresTotal
}

// NotificationsCreated exposes the notification write counter.
func NotificationsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsCreated
}

// AggregateVersionConflicts exposes the optimistic-lock conflict counter.
func AggregateVersionConflicts() prometheus.Counter {
	RegisterMetrics()
	return aggregateVersionClashes
}
