package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for CMS requests and view increments.
const (
	OutcomeOK             = "ok"
	OutcomeTransportError = "transport_error"
	OutcomeInvalid        = "invalid"
	OutcomeNotFound       = "not_found"
	OutcomeError          = "error"
)

// Metrics groups the collectors the service exports. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	cmsRequests    *prometheus.CounterVec
	cmsDuration    *prometheus.HistogramVec
	viewIncrements *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		cmsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "cms_requests_total",
			Help:      "Requests issued to the CMS by query and outcome.",
		}, []string{"query", "outcome"}),
		cmsDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "blog",
			Name:      "cms_request_duration_seconds",
			Help:      "Latency of CMS requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"query"}),
		viewIncrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "blog",
			Name:      "view_increments_total",
			Help:      "Page view increments by outcome.",
		}, []string{"outcome"}),
	}
	reg.MustRegister(
		m.cmsRequests,
		m.cmsDuration,
		m.viewIncrements,
		collectors.NewGoCollector(),
	)
	return m
}

func (m *Metrics) ObserveCMS(query, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.cmsRequests.WithLabelValues(query, outcome).Inc()
	m.cmsDuration.WithLabelValues(query).Observe(took.Seconds())
}

func (m *Metrics) ObserveViewIncrement(outcome string) {
	if m == nil {
		return
	}
	m.viewIncrements.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
