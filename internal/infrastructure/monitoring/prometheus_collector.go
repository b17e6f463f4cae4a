package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"collabcore/internal/core/domain"
)

// PrometheusCollector exposes collaboration metrics. Gauges are sampled
// from the registries by the metrics observer; counters are driven by the
// event bus and the HTTP layer.
type PrometheusCollector struct {
	sessionsActive prometheus.Gauge
	peersConnected prometheus.Gauge
	sharesActive   prometheus.Gauge
	feedObservers  prometheus.Gauge

	votesTotal       prometheus.Counter
	boardOpsTotal    prometheus.Counter
	eventsTotal      *prometheus.CounterVec
	cleanupRunsTotal *prometheus.CounterVec
	cleanupRemoved   *prometheus.CounterVec

	httpRequestDuration *prometheus.HistogramVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		sessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "collabcore_sessions_active",
			Help: "Number of signaling sessions currently registered",
		}),

		peersConnected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "collabcore_peers_connected",
			Help: "Number of peers registered across all sessions",
		}),

		sharesActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "collabcore_screen_shares_active",
			Help: "Number of active screen shares",
		}),

		feedObservers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "collabcore_feed_observers",
			Help: "Number of connected event feed observers",
		}),

		votesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collabcore_votes_total",
			Help: "Total votes cast across all polling tools",
		}),

		boardOpsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "collabcore_board_operations_total",
			Help: "Total whiteboard operations appended",
		}),

		eventsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collabcore_events_total",
			Help: "Domain events observed on the bus, by event type",
		}, []string{"type"}),

		cleanupRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collabcore_cleanup_runs_total",
			Help: "Background cleanup sweeps executed, by target registry",
		}, []string{"registry"}),

		cleanupRemoved: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collabcore_cleanup_removed_total",
			Help: "Entries removed by background cleanup, by target registry",
		}, []string{"registry"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collabcore_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		}, []string{"method", "route", "status"}),
	}
}

func (p *PrometheusCollector) SetActiveSessions(n int) { p.sessionsActive.Set(float64(n)) }
func (p *PrometheusCollector) SetConnectedPeers(n int) { p.peersConnected.Set(float64(n)) }
func (p *PrometheusCollector) SetActiveShares(n int)   { p.sharesActive.Set(float64(n)) }
func (p *PrometheusCollector) SetFeedObservers(n int)  { p.feedObservers.Set(float64(n)) }

func (p *PrometheusCollector) RecordVote()           { p.votesTotal.Inc() }
func (p *PrometheusCollector) RecordBoardOperation() { p.boardOpsTotal.Inc() }

func (p *PrometheusCollector) RecordEvent(eventType domain.EventType) {
	p.eventsTotal.WithLabelValues(string(eventType)).Inc()
}

func (p *PrometheusCollector) RecordCleanup(registry string, removed int) {
	p.cleanupRunsTotal.WithLabelValues(registry).Inc()
	p.cleanupRemoved.WithLabelValues(registry).Add(float64(removed))
}

func (p *PrometheusCollector) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	p.httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}
