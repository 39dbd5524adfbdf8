// Package metrics содержит метрики Prometheus сервиса регистраций.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// Metrics - счетчики и гистограммы сервиса регистраций.
type Metrics struct {
	RegistrationsCreated prometheus.Counter
	ValidationFailures   prometheus.Counter
	IdempotentReplays    prometheus.Counter
	ExportFailures       prometheus.Counter
	CreateDuration       prometheus.Histogram
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
}

// New регистрирует метрики в reg. В main передается prometheus.DefaultRegisterer,
// в тестах - отдельный prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RegistrationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_registrations_created_total",
			Help: "Total number of registrations persisted",
		}),
		ValidationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_registration_validation_failures_total",
			Help: "Total number of registration payloads rejected by validation",
		}),
		IdempotentReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_registration_idempotent_replays_total",
			Help: "Total number of duplicate submissions answered from the idempotency store",
		}),
		ExportFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_registration_export_failures_total",
			Help: "Total number of registrations that could not be exported to the spreadsheet",
		}),
		CreateDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "kiosk_registration_create_duration_seconds",
			Help:    "Duration of registration creation including persistence",
			Buckets: durationBuckets,
		}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kiosk_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by method and route",
			Buckets: durationBuckets,
		}, []string{"method", "route"}),
	}
}

// IncrementRegistrationsCreated records a persisted registration.
func (m *Metrics) IncrementRegistrationsCreated() {
	m.RegistrationsCreated.Inc()
}

// IncrementValidationFailures records a rejected payload.
func (m *Metrics) IncrementValidationFailures() {
	m.ValidationFailures.Inc()
}

// IncrementIdempotentReplays records a duplicate submission served from the store.
func (m *Metrics) IncrementIdempotentReplays() {
	m.IdempotentReplays.Inc()
}

// IncrementExportFailures records a failed spreadsheet export.
func (m *Metrics) IncrementExportFailures() {
	m.ExportFailures.Inc()
}

// ObserveCreate records the duration of a Create call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}

// ObserveHTTPRequest records one served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, start time.Time) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
