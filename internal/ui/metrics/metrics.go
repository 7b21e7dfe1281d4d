// Package metrics records backend call outcomes for the console's /metrics endpoint.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so several consoles can live in one process.
type Recorder struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	guard    *prometheus.CounterVec
}

// New builds a Recorder with its collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "armada_console",
				Subsystem: "backend",
				Name:      "requests_total",
				Help:      "Backend API requests issued by the console.",
			},
			[]string{"operation", "method", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "armada_console",
				Subsystem: "backend",
				Name:      "request_duration_seconds",
				Help:      "Duration of backend API requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"operation"},
		),
		guard: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "armada_console",
				Subsystem: "guard",
				Name:      "decisions_total",
				Help:      "Navigation guard outcomes per route.",
			},
			[]string{"route", "outcome"},
		),
	}
	r.registry.MustRegister(r.requests, r.duration, r.guard)
	return r
}

// ObserveRequest records one backend call. Status 0 means the request never got a response.
func (r *Recorder) ObserveRequest(operation, method string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	r.requests.WithLabelValues(operation, method, code).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveGuard records a navigation guard decision.
func (r *Recorder) ObserveGuard(route, outcome string) {
	if r == nil {
		return
	}
	r.guard.WithLabelValues(route, outcome).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
