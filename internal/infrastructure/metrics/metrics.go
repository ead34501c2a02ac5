package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/walletledger/internal/domain"
)

const namespace = "walletledger"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	OperationFailures    *prometheus.CounterVec
	CascadeDeletions     prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_recorded_total",
				Help:      "Transactions created, updated or deleted, by operation and type",
			},
			[]string{"operation", "type"},
		),
		OperationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operation_failures_total",
				Help:      "Failed ledger operations by operation and error kind",
			},
			[]string{"operation", "kind"},
		),
		CascadeDeletions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_deleted_transactions_total",
			Help:      "Transactions removed by wallet deletion",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_failures_total",
				Help:      "Rejected requests by reason",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the rate limiter",
		}),
	}
}

// TransactionRecorded implements usecase.Observer.
func (m *Metrics) TransactionRecorded(operation string, txType domain.TransactionType) {
	m.TransactionsRecorded.WithLabelValues(operation, string(txType)).Inc()
}

// OperationFailed implements usecase.Observer.
func (m *Metrics) OperationFailed(operation string, err error) {
	m.OperationFailures.WithLabelValues(operation, string(domain.KindOf(err))).Inc()
}

// CascadeDeleted implements usecase.Observer.
func (m *Metrics) CascadeDeleted(count int64) {
	if count > 0 {
		m.CascadeDeletions.Add(float64(count))
	}
}
