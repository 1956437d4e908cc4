package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// Collector gathers the service metrics: HTTP traffic, interaction
// outcomes, degraded auxiliary services and the live session gauge.
//
// Metrics register against the given registerer, so tests can use
// isolated registries.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	interactionsTotal   *prometheus.CounterVec
	interactionDuration *prometheus.HistogramVec
	degradedTotal       *prometheus.CounterVec

	activeSessions prometheus.Gauge

	logger *zap.Logger
}

// NewCollector builds a collector registered on reg. A nil reg falls
// back to the default registerer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	factory := promauto.With(reg)

	c := &Collector{logger: logger.With(zap.String("component", "metrics"))}

	c.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	c.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	c.interactionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interactions_total",
			Help:      "Total number of tutoring interactions by outcome",
		},
		[]string{"outcome"},
	)

	c.interactionDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interaction_duration_seconds",
			Help:      "End-to-end interaction duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	c.degradedTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "degraded_services_total",
			Help:      "Turns that proceeded despite an auxiliary service failure",
		},
		[]string{"service"},
	)

	c.activeSessions = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live tutoring sessions",
		},
	)

	return c
}

// RecordHTTPRequest records one served HTTP request.
func (c *Collector) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordInteraction records one tutoring turn by outcome.
func (c *Collector) RecordInteraction(outcome string, d time.Duration) {
	c.interactionsTotal.WithLabelValues(outcome).Inc()
	c.interactionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordDegraded counts a turn that survived an auxiliary outage.
func (c *Collector) RecordDegraded(service string) {
	c.degradedTotal.WithLabelValues(service).Inc()
}

// SetActiveSessions updates the live session gauge.
func (c *Collector) SetActiveSessions(n int) {
	c.activeSessions.Set(float64(n))
}
