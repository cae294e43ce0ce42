// Package metrics provides Prometheus metrics for the podium scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus instruments for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Score ledger
	scoresRecorded prometheus.Counter
	scoresUpdated  prometheus.Counter
	scoresRejected *prometheus.CounterVec
	ledgerSize     prometheus.Gauge

	// Recalculation coordinator
	recomputePasses    prometheus.Counter
	recomputeFailures  prometheus.Counter
	coalescedTriggers  prometheus.Counter
	passDuration       prometheus.Histogram
	submissionsRanked  prometheus.Histogram
	dirtySubmissions   prometheus.Gauge
	recomputeQueueSize prometheus.Gauge
	recomputeWorkers   prometheus.Gauge

	// Results repository
	snapshotCommits   prometheus.Counter
	trackedHeadcount  prometheus.Gauge
	competitionsTotal prometheus.Gauge

	// HTTP surface
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	rateLimited         prometheus.Counter

	// Live feed
	liveClients    prometheus.Gauge
	liveBroadcasts prometheus.Counter
}

// Global manager on a custom registry, so the default Go runtime collectors
// stay out of the scrape unless the binary opts back in.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // shared registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "podium",
		subsystem:        "scoring",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresRecorded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_recorded_total",
		Help:      "Total number of new judge scores recorded",
	})

	m.scoresUpdated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_updated_total",
		Help:      "Total number of in-place score updates (same judge, submission, criterion)",
	})

	m.scoresRejected = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "scores_rejected_total",
			Help:      "Total number of rejected score writes by reason",
		},
		[]string{"reason"},
	)

	m.ledgerSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_scores",
		Help:      "Current number of score rows in the ledger",
	})

	m.recomputePasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_passes_total",
		Help:      "Total number of completed aggregation and ranking passes",
	})

	m.recomputeFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_failures_total",
		Help:      "Total number of aborted ranking passes",
	})

	m.coalescedTriggers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "coalesced_triggers_total",
		Help:      "Ranking triggers folded into an in-flight pass",
	})

	m.passDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pass_duration_milliseconds",
		Help:      "Duration of a full aggregation and ranking pass in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.submissionsRanked = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_ranked",
		Help:      "Eligible submissions ordered per pass",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	})

	m.dirtySubmissions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "dirty_submissions",
		Help:      "Submissions awaiting aggregate recomputation",
	})

	m.recomputeQueueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_size",
		Help:      "Queued recompute requests (backlog indicator)",
	})

	m.recomputeWorkers = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_workers",
		Help:      "Number of pass workers",
	})

	m.snapshotCommits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshot_commits_total",
		Help:      "Committed leaderboard snapshots",
	})

	m.trackedHeadcount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tracked_submissions",
		Help:      "Submissions tracked across all committed snapshots",
	})

	m.competitionsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "competitions",
		Help:      "Competitions with at least one committed snapshot",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.rateLimited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rate_limited_total",
		Help:      "Score submissions delayed or rejected by the per-judge limiter",
	})

	m.liveClients = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_clients",
		Help:      "Connected websocket leaderboard clients",
	})

	m.liveBroadcasts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_broadcasts_total",
		Help:      "Ranking updates pushed to websocket clients",
	})
}

// Package-level record helpers against the global manager.

func RecordScoreRecorded() { globalManager.scoresRecorded.Inc() }
func RecordScoreUpdated()  { globalManager.scoresUpdated.Inc() }
func RecordScoreRejected(reason string) {
	globalManager.scoresRejected.WithLabelValues(reason).Inc()
}
func UpdateLedgerSize(n int) { globalManager.ledgerSize.Set(float64(n)) }

func RecordRecomputePass()          { globalManager.recomputePasses.Inc() }
func RecordRecomputeFailure()       { globalManager.recomputeFailures.Inc() }
func RecordCoalescedTrigger()       { globalManager.coalescedTriggers.Inc() }
func RecordPassDuration(ms float64) { globalManager.passDuration.Observe(ms) }
func RecordSubmissionsRanked(n int) { globalManager.submissionsRanked.Observe(float64(n)) }
func UpdateDirtySubmissions(n int)  { globalManager.dirtySubmissions.Set(float64(n)) }
func UpdateRecomputeQueueSize(n int) {
	globalManager.recomputeQueueSize.Set(float64(n))
}
func UpdateRecomputeWorkers(n int) { globalManager.recomputeWorkers.Set(float64(n)) }

func RecordSnapshotCommit()          { globalManager.snapshotCommits.Inc() }
func UpdateTrackedSubmissions(n int) { globalManager.trackedHeadcount.Set(float64(n)) }
func UpdateCompetitions(n int)       { globalManager.competitionsTotal.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func RecordRateLimited() { globalManager.rateLimited.Inc() }

func UpdateLiveClients(n int) { globalManager.liveClients.Set(float64(n)) }
func RecordLiveBroadcast()    { globalManager.liveBroadcasts.Inc() }

// GetRegistry exposes the custom registry for the /healthz scrape handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
