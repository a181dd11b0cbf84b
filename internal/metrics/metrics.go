// Package metrics defines the Prometheus collectors for visit tracking and search.
//
// Collectors are registered against an injected registerer so every router
// (and every test) can own an isolated registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ecopress"

// Skip reasons reported by VisitsSkipped.
const (
	ReasonMethod    = "method"
	ReasonPath      = "path"
	ReasonThrottled = "throttled"
	ReasonNoSession = "no_session"
)

// Tracking error stages reported by TrackingErrors.
const (
	StageSession = "session"
	StageStorage = "storage"
	StagePanic   = "panic"
	StageRecency = "recency"
)

// Metrics holds every collector the application exports.
type Metrics struct {
	// VisitsCounted counts visits that reached the storage increment.
	// Labels: source (middleware, poll)
	VisitsCounted *prometheus.CounterVec

	// VisitsSkipped counts requests not counted by the passive tracker.
	// Labels: reason (method, path, throttled, no_session)
	VisitsSkipped *prometheus.CounterVec

	// TrackingErrors counts swallowed analytics faults.
	// Labels: stage (session, storage, panic, recency)
	TrackingErrors *prometheus.CounterVec

	// SearchQueries counts search requests by content type.
	SearchQueries *prometheus.CounterVec

	// RecentViews counts successful recency list updates.
	RecentViews prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers all collectors against reg. reg must also be a Gatherer for Handler to work.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		VisitsCounted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_counted_total",
			Help:      "Visits that incremented a daily visit row",
		}, []string{"source"}),
		VisitsSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_skipped_total",
			Help:      "Requests the passive visit tracker did not count",
		}, []string{"reason"}),
		TrackingErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tracking_errors_total",
			Help:      "Analytics faults swallowed by the tracking path",
		}, []string{"stage"}),
		SearchQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Search requests by content type",
		}, []string{"content_type"}),
		RecentViews: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recent_views_total",
			Help:      "Detail views recorded in the session recency list",
		}),
	}

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// NewIsolated builds metrics on a private registry.
func NewIsolated() *Metrics {
	return New(prometheus.NewRegistry())
}

// Handler exposes the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
