// Package metrics exposes Prometheus collectors for tool dispatch and
// session lifecycle. Each server owns its own registry so tests and
// embedded servers never collide on the global default registerer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wagiedev/project-tools-mcp/internal/mcp"
	"github.com/wagiedev/project-tools-mcp/internal/session"
)

// UnknownTool is the label used for dispatches naming no registered tool.
// Keeps label cardinality bounded by the catalog size.
const UnknownTool = "_unknown"

const namespace = "mcp"

// Metrics holds the server collectors.
type Metrics struct {
	registry *prometheus.Registry

	invocations    *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	activeSessions *prometheus.GaugeVec
	sessionsTotal  *prometheus.CounterVec
	sessionSeconds *prometheus.HistogramVec
	internalErrors *prometheus.CounterVec
}

var (
	_ mcp.Observer     = (*Metrics)(nil)
	_ session.Observer = (*Metrics)(nil)
)

// New creates the collectors and registers them on reg. A nil reg gets a
// fresh private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: reg,
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_invocations_total",
			Help:      "Tool dispatches by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tool_duration_seconds",
			Help:      "Tool dispatch latency including argument validation.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"tool"}),
		activeSessions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently bound to a connection.",
		}, []string{"mode"}),
		sessionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions opened since start.",
		}, []string{"mode"}),
		sessionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Lifetime of released sessions.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"mode"}),
		internalErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "internal_errors_total",
			Help:      "Unexpected failures while handling a connection.",
		}, []string{"stage"}),
	}

	reg.MustRegister(
		m.invocations,
		m.duration,
		m.activeSessions,
		m.sessionsTotal,
		m.sessionSeconds,
		m.internalErrors,
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveDispatch implements mcp.Observer.
func (m *Metrics) ObserveDispatch(operation string, outcome mcp.Outcome, elapsed time.Duration) {
	if outcome == mcp.OutcomeUnknown {
		operation = UnknownTool
	}

	m.invocations.WithLabelValues(operation, string(outcome)).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SessionOpened implements session.Observer.
func (m *Metrics) SessionOpened(mode session.Mode) {
	m.sessionsTotal.WithLabelValues(string(mode)).Inc()
	m.activeSessions.WithLabelValues(string(mode)).Inc()
}

// SessionReleased implements session.Observer.
func (m *Metrics) SessionReleased(mode session.Mode, lifetime time.Duration) {
	m.activeSessions.WithLabelValues(string(mode)).Dec()
	m.sessionSeconds.WithLabelValues(string(mode)).Observe(lifetime.Seconds())
}

// InternalError counts an unexpected failure at the given stage, such as
// "panic" or "handler".
func (m *Metrics) InternalError(stage string) {
	m.internalErrors.WithLabelValues(stage).Inc()
}
