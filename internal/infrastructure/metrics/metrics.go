package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gowallet"

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Wallet engine metrics
	WalletOperations  *prometheus.CounterVec
	WalletDuration    *prometheus.HistogramVec
	DuplicateRequests *prometheus.CounterVec

	// Provider webhook metrics
	WebhookCalls    *prometheus.CounterVec
	WebhookDuration *prometheus.HistogramVec

	// Transfer metrics
	Transfers *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter

	// Reconciliation metrics
	ReconciliationDrift *prometheus.GaugeVec
}

// New creates all Prometheus metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		WalletOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wallet_operations_total",
				Help:      "Wallet operations by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		WalletDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wallet_operation_duration_seconds",
				Help:      "Duration of wallet operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		DuplicateRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "duplicate_requests_total",
				Help:      "Replayed callbacks answered from a recorded result",
			},
			[]string{"kind"},
		),

		WebhookCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_calls_total",
				Help:      "Provider callbacks by provider, method and reply code",
			},
			[]string{"provider", "method", "code"},
		),
		WebhookDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "webhook_duration_seconds",
				Help:      "Provider callback duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "method"},
		),

		Transfers: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transfers_total",
				Help:      "Credit transfers by outcome",
			},
			[]string{"outcome"},
		),

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
				Help:      "HTTP request duration",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		}),

		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Requests rejected by a rate limiter",
			},
			[]string{"limiter"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events published",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_failures_total",
			Help:      "Outbox events that failed to publish",
		}),

		ReconciliationDrift: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reconciliation_drift",
				Help:      "Absolute difference between cached balance and ledger sum",
			},
			[]string{"account_id"},
		),
	}
}

// RecordWalletOperation records one engine call.
func (m *Metrics) RecordWalletOperation(kind, outcome string, duration time.Duration) {
	m.WalletOperations.WithLabelValues(kind, outcome).Inc()
	m.WalletDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordDuplicate records a replayed callback.
func (m *Metrics) RecordDuplicate(kind string) {
	m.DuplicateRequests.WithLabelValues(kind).Inc()
}

// RecordWebhook records one provider reply.
func (m *Metrics) RecordWebhook(provider, method, code string, duration time.Duration) {
	m.WebhookCalls.WithLabelValues(provider, method, code).Inc()
	m.WebhookDuration.WithLabelValues(provider, method).Observe(duration.Seconds())
}

// RecordTransfer records a transfer attempt.
func (m *Metrics) RecordTransfer(outcome string) {
	m.Transfers.WithLabelValues(outcome).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// InFlight adjusts the in-flight request gauge by delta.
func (m *Metrics) InFlight(delta float64) {
	m.HTTPInFlight.Add(delta)
}

// RecordRateLimited records a rejected request.
func (m *Metrics) RecordRateLimited(limiter string) {
	m.RateLimitHits.WithLabelValues(limiter).Inc()
}

// RecordOutboxPublished records a published outbox event.
func (m *Metrics) RecordOutboxPublished() {
	m.OutboxPublished.Inc()
}

// RecordOutboxFailure records an outbox event that failed to publish.
func (m *Metrics) RecordOutboxFailure() {
	m.OutboxFailures.Inc()
}

// RecordReconciliationDrift sets the drift found for an account.
func (m *Metrics) RecordReconciliationDrift(accountID string, drift float64) {
	m.ReconciliationDrift.WithLabelValues(accountID).Set(drift)
}
