// Package metrics exposes Prometheus instrumentation for the key lifecycle.
// The counters here are the observability channel for failures that are
// deliberately swallowed elsewhere, most importantly dropped usage-log writes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service. Pass a fresh
// Registerer in tests for isolation.
type Metrics struct {
	registry prometheus.Registerer
	gatherer prometheus.Gatherer

	KeysGeneratedTotal   prometheus.Counter
	ValidationsTotal     *prometheus.CounterVec
	UsageLogDroppedTotal prometheus.Counter
	AdminLoginsTotal     *prometheus.CounterVec
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
}

// New creates and registers all collectors. A nil registry uses a private
// prometheus.NewRegistry so multiple instances never collide.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		gatherer: reg,

		KeysGeneratedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "apikeygen",
			Subsystem: "keys",
			Name:      "generated_total",
			Help:      "Total number of API keys generated",
		}),
		ValidationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apikeygen",
			Subsystem: "keys",
			Name:      "validations_total",
			Help:      "Total number of key validation attempts by outcome",
		}, []string{"outcome"}), // valid, invalid, error
		UsageLogDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "apikeygen",
			Subsystem: "usage_log",
			Name:      "dropped_total",
			Help:      "Usage events that failed to persist after a successful validation",
		}),
		AdminLoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apikeygen",
			Subsystem: "admin",
			Name:      "logins_total",
			Help:      "Total number of admin login attempts by outcome",
		}, []string{"outcome"}), // success, failure
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apikeygen",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "apikeygen",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path"}),
	}
}

// Handler returns the /metrics HTTP handler for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
