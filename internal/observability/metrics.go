// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Monitor metrics
	TicksTotal        prometheus.Counter
	TickErrors        *prometheus.CounterVec
	PoolsTracked      prometheus.Gauge
	SamplesRecorded   prometheus.Counter
	PatternsDetected  *prometheus.CounterVec
	OpportunitiesSent prometheus.Counter

	// Decision metrics
	RecommendationsTotal *prometheus.CounterVec
	DecisionConfidence   prometheus.Histogram

	// KOL metrics
	KOLTradesProcessed prometheus.Counter
	KOLAlertsEmitted   prometheus.Counter

	// Execution metrics
	BundlesSubmitted *prometheus.CounterVec
	TipSOL           prometheus.Histogram

	// Latency metrics
	FeedFetchLatency prometheus.Histogram
	RPCCallLatency   *prometheus.HistogramVec
	WSMessageLatency prometheus.Histogram

	// Notification metrics
	NotificationsSent *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulTick prometheus.Gauge
	UptimeSeconds      prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_flow_bot"
	}

	return &Metrics{
		// Monitor metrics
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "ticks_total",
			Help:      "Total number of monitoring ticks",
		}),
		TickErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "tick_errors_total",
			Help:      "Total number of tick errors by stage",
		}, []string{"stage"}),
		PoolsTracked: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "pools_tracked",
			Help:      "Current number of pools with sample windows",
		}),
		SamplesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "samples_recorded_total",
			Help:      "Total number of liquidity samples recorded",
		}),
		PatternsDetected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "patterns_detected_total",
			Help:      "Total number of flow patterns detected by type",
		}, []string{"pattern"}),
		OpportunitiesSent: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "opportunities_total",
			Help:      "Total number of opportunities emitted",
		}),

		// Decision metrics
		RecommendationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "recommendations_total",
			Help:      "Total number of trade recommendations by decision",
		}, []string{"decision"}),
		DecisionConfidence: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "confidence",
			Help:      "Confidence distribution of evaluated opportunities",
			Buckets:   []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),

		// KOL metrics
		KOLTradesProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kol",
			Name:      "trades_processed_total",
			Help:      "Total number of KOL trades processed",
		}),
		KOLAlertsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kol",
			Name:      "alerts_emitted_total",
			Help:      "Total number of KOL alerts emitted",
		}),

		// Execution metrics
		BundlesSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jito",
			Name:      "bundles_submitted_total",
			Help:      "Total number of Jito bundles submitted by final status",
		}, []string{"status"}),
		TipSOL: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "jito",
			Name:      "tip_sol",
			Help:      "Tip size distribution in SOL",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),

		// Latency metrics
		FeedFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "fetch_latency_seconds",
			Help:      "Pool feed fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		WSMessageLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "ws_message_latency_seconds",
			Help:      "WebSocket message processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Notification metrics
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "sent_total",
			Help:      "Total number of notifications sent by channel and kind",
		}, []string{"channel", "kind"}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// Health metrics
		LastSuccessfulTick: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_tick_timestamp",
			Help:      "Unix timestamp of last successful monitoring tick",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordTick increments the tick counter and stamps the health gauge.
func RecordTick(unixSeconds int64) {
	DefaultMetrics.TicksTotal.Inc()
	DefaultMetrics.LastSuccessfulTick.Set(float64(unixSeconds))
}

// RecordTickError records a tick failure at the given stage.
func RecordTickError(stage string) {
	DefaultMetrics.TickErrors.WithLabelValues(stage).Inc()
}

// RecordPattern records a detected flow pattern.
func RecordPattern(pattern string) {
	DefaultMetrics.PatternsDetected.WithLabelValues(pattern).Inc()
}

// RecordOpportunity increments the opportunities counter.
func RecordOpportunity() {
	DefaultMetrics.OpportunitiesSent.Inc()
}

// RecordRecommendation records a recommendation and its confidence.
func RecordRecommendation(decision string, confidence float64) {
	DefaultMetrics.RecommendationsTotal.WithLabelValues(decision).Inc()
	DefaultMetrics.DecisionConfidence.Observe(confidence)
}

// RecordKOLTrade increments the KOL trades processed counter.
func RecordKOLTrade() {
	DefaultMetrics.KOLTradesProcessed.Inc()
}

// RecordKOLAlert increments the KOL alerts emitted counter.
func RecordKOLAlert() {
	DefaultMetrics.KOLAlertsEmitted.Inc()
}

// RecordBundle records a submitted bundle with its final status and tip.
func RecordBundle(status string, tipSOL float64) {
	DefaultMetrics.BundlesSubmitted.WithLabelValues(status).Inc()
	DefaultMetrics.TipSOL.Observe(tipSOL)
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordNotification records a sent notification.
func RecordNotification(channel, kind string) {
	DefaultMetrics.NotificationsSent.WithLabelValues(channel, kind).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
