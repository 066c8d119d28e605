// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the creation pipeline.
type Metrics struct {
	// Artifact publishing
	ArtifactsPinned    *prometheus.CounterVec // kind: image | metadata
	ArtifactPinErrors  *prometheus.CounterVec
	ArtifactPinLatency *prometheus.HistogramVec

	// Transaction lifecycle
	TransactionsAssembled prometheus.Counter
	TransactionsSubmitted prometheus.Counter
	TransactionsConfirmed prometheus.Counter
	TransactionsFailed    *prometheus.CounterVec // reason: rejected | submission | timeout
	ConfirmationLatency   prometheus.Histogram

	// Fees
	FeeLamportsCharged prometheus.Counter
	RevokesRequested   *prometheus.CounterVec // authority: mint | freeze | update

	// RPC
	RPCCallLatency *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_token_forge"
	}

	return &Metrics{
		ArtifactsPinned: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "artifacts_pinned_total",
			Help:      "Total artifacts pinned, by kind",
		}, []string{"kind"}),
		ArtifactPinErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "artifact_pin_errors_total",
			Help:      "Total artifact pinning failures, by kind",
		}, []string{"kind"}),
		ArtifactPinLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "publisher",
			Name:      "artifact_pin_duration_seconds",
			Help:      "Artifact pinning round-trip duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		TransactionsAssembled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "assembled_total",
			Help:      "Total transactions assembled and partially signed",
		}),
		TransactionsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "submitted_total",
			Help:      "Total transactions submitted to the network",
		}),
		TransactionsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "confirmed_total",
			Help:      "Total transactions confirmed at finalized commitment",
		}),
		TransactionsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "failed_total",
			Help:      "Total failed creation attempts, by reason",
		}, []string{"reason"}),
		ConfirmationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "txn",
			Name:      "confirmation_duration_seconds",
			Help:      "Time from submission to finalized confirmation",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 90, 120},
		}),

		FeeLamportsCharged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "lamports_charged_total",
			Help:      "Total service fee lamports charged",
		}),
		RevokesRequested: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fees",
			Name:      "revokes_requested_total",
			Help:      "Total authority revocations requested, by authority",
		}, []string{"authority"}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "Solana RPC call duration, by method",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
}

// Handler returns an HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
