package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Payment metrics
	PaymentsHandled *prometheus.CounterVec
	PaymentDuration *prometheus.HistogramVec
	PaymentAmount   *prometheus.HistogramVec

	// Ledger metrics
	JournalEntries *prometheus.CounterVec
	FrozenReleases prometheus.Counter
	LedgerErrors   *prometheus.CounterVec

	// Fraud metrics
	FraudAssessments *prometheus.CounterVec
	FraudScore       prometheus.Histogram

	// Approval metrics
	ApprovalDecisions *prometheus.CounterVec
	PendingTransfers  prometheus.Gauge
	TransfersExpired  prometheus.Counter

	// Exchange metrics
	ConversionsCompleted prometheus.Counter
	ConversionFees       prometheus.Histogram
	RateRefreshes        prometheus.Counter
	RateLookupErrors     prometheus.Counter

	// Archive metrics
	ArchiveWrites *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		PaymentsHandled: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_payments_handled_total",
				Help: "Total payment operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		PaymentDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletcore_payment_duration_seconds",
				Help:    "Duration of payment operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		PaymentAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "walletcore_payment_amount",
				Help:    "Payment amounts in the stated currency",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"operation", "currency"},
		),

		JournalEntries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_journal_entries_total",
				Help: "Total journal entries appended by kind",
			},
			[]string{"kind"},
		),
		FrozenReleases: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_frozen_releases_total",
			Help: "Total frozen-fund releases",
		}),
		LedgerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_ledger_errors_total",
				Help: "Total ledger errors by type",
			},
			[]string{"error_type"},
		),

		FraudAssessments: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_fraud_assessments_total",
				Help: "Total fraud assessments by risk level",
			},
			[]string{"level"},
		),
		FraudScore: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletcore_fraud_score",
			Help:    "Fraud risk scores",
			Buckets: []float64{10, 25, 50, 70, 90, 120, 200},
		}),

		ApprovalDecisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_approval_decisions_total",
				Help: "Total approval decisions by type and outcome",
			},
			[]string{"type", "decision"},
		),
		PendingTransfers: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "walletcore_pending_transfers",
			Help: "Current number of transfers awaiting manual review",
		}),
		TransfersExpired: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_transfers_expired_total",
			Help: "Total pending transfers expired by the sweeper",
		}),

		ConversionsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_conversions_completed_total",
			Help: "Total completed currency conversions",
		}),
		ConversionFees: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "walletcore_conversion_fees",
			Help:    "Conversion fees in the source currency",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 50, 100},
		}),
		RateRefreshes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_rate_refreshes_total",
			Help: "Total rate table refreshes",
		}),
		RateLookupErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "walletcore_rate_lookup_errors_total",
			Help: "Total failed rate lookups",
		}),

		ArchiveWrites: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "walletcore_archive_writes_total",
				Help: "Total journal archive writes by status",
			},
			[]string{"status"},
		),
	}
}
