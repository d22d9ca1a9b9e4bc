package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics is the service metric set, registered on a private registry so
// tests can build isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LicensesCreated   prometheus.Counter
	LicensesActivated prometheus.Counter
	LicensesDeleted   prometheus.Counter

	NotificationsDelivered  prometheus.Counter
	NotificationsDeadLetter prometheus.Counter
	DuplicateSubmissionsHit prometheus.Counter
}

// NewMetrics builds and registers the metric set.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pids_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pids_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		LicensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pids_licenses_created_total",
			Help: "Licenses created.",
		}),
		LicensesActivated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pids_licenses_activated_total",
			Help: "Licenses activated.",
		}),
		LicensesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pids_licenses_deleted_total",
			Help: "Licenses deleted.",
		}),
		NotificationsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pids_notifications_delivered_total",
			Help: "Credential mails delivered.",
		}),
		NotificationsDeadLetter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pids_notifications_dead_letter_total",
			Help: "Credential mails dropped after exhausting retries.",
		}),
		DuplicateSubmissionsHit: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pids_duplicate_submissions_total",
			Help: "Create submissions rejected by the duplicate window.",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LicensesCreated,
		m.LicensesActivated,
		m.LicensesDeleted,
		m.NotificationsDelivered,
		m.NotificationsDeadLetter,
		m.DuplicateSubmissionsHit,
	)
	return m
}
