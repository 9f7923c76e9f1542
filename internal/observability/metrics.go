package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes prometheus collectors for the HTTP layer and the ticket side effects.
type Metrics struct {
	registry         *prometheus.Registry
	requestCount     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	errorCount       *prometheus.CounterVec
	stockAdjustments *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// NewMetrics registers the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "servicedesk_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_http_errors_total",
			Help: "HTTP errors by method, route and error code.",
		}, []string{"method", "path", "code"}),
		stockAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_stock_adjustments_total",
			Help: "Stock quantity changes caused by work entries.",
		}, []string{"direction"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "servicedesk_notifications_total",
			Help: "Ticket notifications by template and outcome.",
		}, []string{"template", "outcome"}),
	}
	m.registry.MustRegister(
		m.requestCount,
		m.requestDuration,
		m.errorCount,
		m.stockAdjustments,
		m.notifications,
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(method, path, code).Inc()
}

// RecordStockAdjustment counts a stock change; delta sign gives the direction.
func (m *Metrics) RecordStockAdjustment(delta float64) {
	if m == nil {
		return
	}
	direction := "release"
	if delta < 0 {
		direction = "reserve"
	}
	m.stockAdjustments.WithLabelValues(direction).Inc()
}

// RecordNotification counts a notification attempt.
func (m *Metrics) RecordNotification(template, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(template, outcome).Inc()
}
