// Package metrics holds the Prometheus collectors for the API, the group vault
// workflows and the reconciler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vault_wallet"

// Metrics owns a private registry so tests can create as many as they like.
// A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	workflows *prometheus.CounterVec

	intentsReconciled   *prometheus.CounterVec
	invariantViolations *prometheus.CounterVec
	lastReconcile       prometheus.Gauge
}

// New creates the collectors and registers them with a new registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		}, []string{"method", "route"}),
		workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "group_vault",
			Name:      "workflows_total",
			Help:      "Group vault workflow runs by outcome.",
		}, []string{"workflow", "outcome"}),
		intentsReconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "intents_total",
			Help:      "Stuck intents handled by the reconciler.",
		}, []string{"kind", "result"}),
		invariantViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "invariant_violations_total",
			Help:      "Group vault invariant violations found by the audit.",
		}, []string{"check"}),
		lastReconcile: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reconcile",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed reconciliation pass.",
		}),
	}

	m.Registry.MustRegister(
		m.httpInFlight,
		m.httpRequests,
		m.httpDuration,
		m.workflows,
		m.intentsReconciled,
		m.invariantViolations,
		m.lastReconcile,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
	return m
}

// Handler exposes the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncInFlight() {
	if m != nil {
		m.httpInFlight.Inc()
	}
}

func (m *Metrics) DecInFlight() {
	if m != nil {
		m.httpInFlight.Dec()
	}
}

// RecordHTTPRequest records one finished request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordWorkflow counts a workflow run. outcome is "ok" or an error kind.
func (m *Metrics) RecordWorkflow(workflow, outcome string) {
	if m != nil {
		m.workflows.WithLabelValues(workflow, outcome).Inc()
	}
}

// RecordReconciledIntent counts one stuck intent by what the reconciler did with it.
func (m *Metrics) RecordReconciledIntent(kind, result string) {
	if m != nil {
		m.intentsReconciled.WithLabelValues(kind, result).Inc()
	}
}

// RecordViolation counts one failed invariant check.
func (m *Metrics) RecordViolation(check string) {
	if m != nil {
		m.invariantViolations.WithLabelValues(check).Inc()
	}
}

// MarkReconciled stamps the completion time of a reconciliation pass.
func (m *Metrics) MarkReconciled(at time.Time) {
	if m != nil {
		m.lastReconcile.Set(float64(at.Unix()))
	}
}
