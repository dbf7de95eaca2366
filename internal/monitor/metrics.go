// internal/monitor/metrics.go
package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors. A nil *Metrics is valid and records
// nothing, so components can be built without a registry in tests.
type Metrics struct {
	Connections        prometheus.Gauge
	LobbyWaiting       prometheus.Gauge
	ActiveMatches      prometheus.Gauge
	MessagesReceived   *prometheus.CounterVec
	MatchesCreated     prometheus.Counter
	MatchesResolved    *prometheus.CounterVec
	MatchesAbandoned   *prometheus.CounterVec
	CollaboratorErrors *prometheus.CounterVec
	ResolveLatency     prometheus.Histogram
}

// NewMetrics builds the collectors under namespace and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh prometheus.NewRegistry() in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Number of open websocket connections",
		}),
		LobbyWaiting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lobby_waiting",
			Help:      "Number of players waiting in the lobby queue",
		}),
		ActiveMatches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_matches",
			Help:      "Number of matches currently in progress",
		}),
		MessagesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Client messages received, by type",
		}, []string{"type"}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_created_total",
			Help:      "Matches created by the matchmaker",
		}),
		MatchesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_resolved_total",
			Help:      "Matches resolved, by result",
		}, []string{"result"}),
		MatchesAbandoned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_abandoned_total",
			Help:      "Matches discarded without a result, by reason",
		}, []string{"reason"}),
		CollaboratorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collaborator_errors_total",
			Help:      "Failed calls to the stats store or match archive, by operation",
		}, []string{"op"}),
		ResolveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "resolve_latency_seconds",
			Help:      "Time from the second move to the final game update",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	reg.MustRegister(
		m.Connections,
		m.LobbyWaiting,
		m.ActiveMatches,
		m.MessagesReceived,
		m.MatchesCreated,
		m.MatchesResolved,
		m.MatchesAbandoned,
		m.CollaboratorErrors,
		m.ResolveLatency,
	)

	return m
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.Connections.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.Connections.Dec()
}

func (m *Metrics) MessageReceived(msgType string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(msgType).Inc()
}

func (m *Metrics) MatchCreated() {
	if m == nil {
		return
	}
	m.MatchesCreated.Inc()
}

// MatchResolved counts a finished match; result is "win" or "draw".
func (m *Metrics) MatchResolved(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.MatchesResolved.WithLabelValues(result).Inc()
	m.ResolveLatency.Observe(took.Seconds())
}

func (m *Metrics) MatchAbandoned(reason string) {
	if m == nil {
		return
	}
	m.MatchesAbandoned.WithLabelValues(reason).Inc()
}

func (m *Metrics) CollaboratorError(op string) {
	if m == nil {
		return
	}
	m.CollaboratorErrors.WithLabelValues(op).Inc()
}

// SetOccupancy refreshes the lobby and match gauges.
func (m *Metrics) SetOccupancy(waiting, matches int) {
	if m == nil {
		return
	}
	m.LobbyWaiting.Set(float64(waiting))
	m.ActiveMatches.Set(float64(matches))
}
