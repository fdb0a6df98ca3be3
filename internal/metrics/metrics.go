// Package metrics exposes Prometheus collectors for budget operations and
// HTTP traffic on a private registry.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
)

type Metrics struct {
	registry        *prometheus.Registry
	budgetOps       *prometheus.CounterVec
	events          *prometheus.CounterVec
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		budgetOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_operations_total",
				Help: "Budget repository operations, partitioned by operation and outcome.",
			},
			[]string{"op", "outcome"},
		),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_events_total",
				Help: "Budget change events, partitioned by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		),
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "How many HTTP requests processed, partitioned by status code, method and route.",
			},
			[]string{"code", "method", "route"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "The HTTP request latencies in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"code", "method", "route"},
		),
	}

	m.registry.MustRegister(
		m.budgetOps,
		m.events,
		m.requestCount,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveBudgetOp counts one repository operation. A nil receiver is a no-op.
func (m *Metrics) ObserveBudgetOp(op, outcome string) {
	if m == nil {
		return
	}
	m.budgetOps.WithLabelValues(op, outcome).Inc()
}

// ObserveEvent counts one published or consumed budget event.
func (m *Metrics) ObserveEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	status := strconv.Itoa(code)
	m.requestCount.WithLabelValues(status, method, route).Inc()
	m.requestDuration.WithLabelValues(status, method, route).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
