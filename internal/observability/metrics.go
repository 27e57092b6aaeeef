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
	// Lookup metrics
	LookupsTotal   *prometheus.CounterVec
	StageFailures  *prometheus.CounterVec
	BatchSize      prometheus.Histogram
	BatchDuration  prometheus.Histogram
	BatchesAborted prometheus.Counter

	// Latency metrics
	RPCCallLatency  *prometheus.HistogramVec
	URIFetchLatency *prometheus.HistogramVec

	// Database metrics
	SnapshotsRecorded *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec

	// Health metrics
	LastSuccessfulLookup prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a new Metrics instance registered on reg.
func NewMetricsWith(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "solana_token_info"
	}
	factory := promauto.With(reg)

	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "tokens_total",
			Help:      "Total number of token lookups by outcome",
		}, []string{"outcome"}),
		StageFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "stage_failures_total",
			Help:      "Total number of lookup stage failures by stage and reason",
		}, []string{"stage", "reason"}),
		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "batch_size",
			Help:      "Number of mints per lookup call",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "batch_duration_seconds",
			Help:      "Lookup call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		BatchesAborted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lookup",
			Name:      "batches_aborted_total",
			Help:      "Total number of lookup calls abandoned on cancellation",
		}),

		RPCCallLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solana",
			Name:      "rpc_call_latency_seconds",
			Help:      "Solana RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		URIFetchLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "offchain",
			Name:      "fetch_latency_seconds",
			Help:      "Off-chain metadata fetch latency in seconds by result",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),

		SnapshotsRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "snapshots_recorded_total",
			Help:      "Total number of token snapshots recorded by status",
		}, []string{"status"}),
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulLookup: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_lookup_timestamp",
			Help:      "Unix timestamp of last lookup call that completed",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordLookup counts one finished token lookup.
func RecordLookup(outcome string) {
	DefaultMetrics.LookupsTotal.WithLabelValues(outcome).Inc()
}

// RecordStageFailure counts a failed or skipped lookup stage.
func RecordStageFailure(stage, reason string) {
	DefaultMetrics.StageFailures.WithLabelValues(stage, reason).Inc()
}

// RecordBatch records a lookup call that ran to completion.
func RecordBatch(size int, seconds float64, completedAt int64) {
	DefaultMetrics.BatchSize.Observe(float64(size))
	DefaultMetrics.BatchDuration.Observe(seconds)
	DefaultMetrics.LastSuccessfulLookup.Set(float64(completedAt))
}

// RecordBatchAborted counts a cancelled lookup call.
func RecordBatchAborted() {
	DefaultMetrics.BatchesAborted.Inc()
}

// RecordRPCLatency records RPC call latency.
func RecordRPCLatency(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// RecordURIFetch records an off-chain document fetch.
func RecordURIFetch(result string, seconds float64) {
	DefaultMetrics.URIFetchLatency.WithLabelValues(result).Observe(seconds)
}

// RecordSnapshot counts a snapshot write attempt.
func RecordSnapshot(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.SnapshotsRecorded.WithLabelValues(status).Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
