// Package metrics exposes Prometheus collectors for HTTP traffic and the lead pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. Collectors are registered on the registry
// passed to New so tests can use an isolated registry.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	StatusTransitions *prometheus.CounterVec
	GuardViolations   prometheus.Counter
	ImageUploads      *prometheus.CounterVec
	ChangeSignals     prometheus.Counter
	SSEClients        prometheus.Gauge
}

// New creates and registers all collectors.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		StatusTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_status_transitions_total",
				Help: "Lead status transitions persisted, by target status",
			},
			[]string{"to"},
		),
		GuardViolations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lead_guard_violations_total",
			Help: "Status transitions rejected by a lifecycle guard",
		}),
		ImageUploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lead_image_uploads_total",
				Help: "Image uploads by result",
			},
			[]string{"result"},
		),
		ChangeSignals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lead_change_signals_total",
			Help: "Change notifications received from the leads table",
		}),
		SSEClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "lead_sse_clients",
			Help: "Connected server-sent event clients",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.StatusTransitions,
		m.GuardViolations,
		m.ImageUploads,
		m.ChangeSignals,
		m.SSEClients,
	)
	return m
}

// Middleware records request counts and latency. The route template is used as
// the path label to keep cardinality bounded.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return gin.WrapH(h)
}
