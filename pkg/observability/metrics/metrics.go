// Package metrics exports propagation and HTTP events as Prometheus metrics.
//
// [Metrics] implements both [observability.PropagationHooks] and
// [observability.HTTPHooks]:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	observability.SetPropagationHooks(m)
//	observability.SetHTTPHooks(m)
//
// All metric names carry the "infection_" prefix.
package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/infection/pkg/observability"
)

const namespace = "infection"

// Metrics holds the Prometheus collectors fed by the hooks.
type Metrics struct {
	sessions        *prometheus.CounterVec
	infected        *prometheus.CounterVec
	rejected        *prometheus.CounterVec
	sessionSize     *prometheus.HistogramVec
	sessionDuration *prometheus.HistogramVec

	inflight        prometheus.Gauge
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestErrors   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// It panics if a collector with the same name is already registered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Propagation sessions started, by policy.",
		}, []string{"policy"}),
		infected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "infected_nodes_total",
			Help:      "Nodes that received a new version, by policy.",
		}, []string{"policy"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_candidates_total",
			Help:      "Candidates that failed atomic admission.",
		}, []string{"policy"}),
		sessionSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_infected_nodes",
			Help:      "Nodes infected per session.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"policy"}),
		sessionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Propagation session duration.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1},
		}, []string{"policy"}),

		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP responses, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration, by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		requestErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "HTTP requests that failed with an internal error.",
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.sessions, m.infected, m.rejected, m.sessionSize, m.sessionDuration,
		m.inflight, m.requests, m.requestDuration, m.requestErrors,
	)
	return m
}

// OnSessionStart counts a started session.
func (m *Metrics) OnSessionStart(policy string, token uint64, budget int) {
	m.sessions.WithLabelValues(policy).Inc()
}

// OnSessionComplete records the session size and duration.
func (m *Metrics) OnSessionComplete(policy string, infected int, d time.Duration) {
	m.sessionSize.WithLabelValues(policy).Observe(float64(infected))
	m.sessionDuration.WithLabelValues(policy).Observe(d.Seconds())
}

// OnInfect counts an infected node.
func (m *Metrics) OnInfect(policy string, node int) {
	m.infected.WithLabelValues(policy).Inc()
}

// OnReject counts a rejected candidate.
func (m *Metrics) OnReject(policy string, node, need, remaining int) {
	m.rejected.WithLabelValues(policy).Inc()
}

// OnRequest tracks a request in flight.
func (m *Metrics) OnRequest(ctx context.Context, method, path string) {
	m.inflight.Inc()
}

// OnResponse records a finished request.
func (m *Metrics) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	m.inflight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// OnError counts a failed request.
func (m *Metrics) OnError(ctx context.Context, method, route string, err error) {
	m.requestErrors.WithLabelValues(method, route).Inc()
}

var (
	_ observability.PropagationHooks = (*Metrics)(nil)
	_ observability.HTTPHooks        = (*Metrics)(nil)
)
