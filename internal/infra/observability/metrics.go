package observability

import (
	"time"

	"github.com/boddenberg/funds-bfa-go/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics for the BFA.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration      *prometheus.HistogramVec
	externalErrors       *prometheus.CounterVec
	cacheHits            *prometheus.CounterVec
	cacheMisses          *prometheus.CounterVec
	fundTransitions      *prometheus.CounterVec
	distributions        *prometheus.CounterVec
	distributedAmount    *prometheus.CounterVec
	donations            *prometheus.CounterVec
	donatedAmount        *prometheus.CounterVec
	balanceConflicts     prometheus.Counter
	compensationFailures prometheus.Counter
	acknowledgmentErrors prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bfa_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		fundTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_fund_request_transitions_total",
				Help: "Fund requests entering each status.",
			},
			[]string{"status"},
		),
		distributions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_distributions_total",
				Help: "Distributions recorded.",
			},
			[]string{"category"},
		),
		distributedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_distributed_amount_total",
				Help: "Sum of amounts distributed to beneficiaries.",
			},
			[]string{"category"},
		),
		donations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_donations_total",
				Help: "Donations recorded.",
			},
			[]string{"category"},
		),
		donatedAmount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bfa_donated_amount_total",
				Help: "Sum of recorded donation amounts.",
			},
			[]string{"category"},
		),
		balanceConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bfa_balance_conflicts_total",
				Help: "Lost compare-and-swap attempts on remainingAmount.",
			},
		),
		compensationFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bfa_distribution_compensation_failures_total",
				Help: "Balances that could not be restored after a failed distribution insert.",
			},
		),
		acknowledgmentErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bfa_acknowledgment_errors_total",
				Help: "Donation acknowledgments that could not be stored.",
			},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrFundTransition counts a fund request entering status.
func (m *Metrics) IncrFundTransition(status domain.FundRequestStatus) {
	m.fundTransitions.WithLabelValues(string(status)).Inc()
}

// RecordDistribution counts a distribution and its total.
func (m *Metrics) RecordDistribution(category domain.CategoryID, total decimal.Decimal) {
	m.distributions.WithLabelValues(string(category)).Inc()
	m.distributedAmount.WithLabelValues(string(category)).Add(total.InexactFloat64())
}

// RecordDonation counts a donation and its amount.
func (m *Metrics) RecordDonation(category domain.CategoryID, amount decimal.Decimal) {
	m.donations.WithLabelValues(string(category)).Inc()
	m.donatedAmount.WithLabelValues(string(category)).Add(amount.InexactFloat64())
}

// IncrBalanceConflict counts a lost CAS on remainingAmount.
func (m *Metrics) IncrBalanceConflict() {
	m.balanceConflicts.Inc()
}

// IncrCompensationFailure counts a balance left reserved after a failed insert.
func (m *Metrics) IncrCompensationFailure() {
	m.compensationFailures.Inc()
}

// IncrAcknowledgmentError counts a donation acknowledgment that was not stored.
func (m *Metrics) IncrAcknowledgmentError() {
	m.acknowledgmentErrors.Inc()
}

// Snapshot returns the operational counters for GET /v1/admin/metrics.
func (m *Metrics) Snapshot() *domain.OperationsMetrics {
	hits := getCounterValue(m.cacheHits.WithLabelValues("dashboard"))
	misses := getCounterValue(m.cacheMisses.WithLabelValues("dashboard"))

	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = hits / (hits + misses)
	}

	return &domain.OperationsMetrics{
		FundRequestsCreated:   int64(getCounterValue(m.fundTransitions.WithLabelValues(string(domain.FundRequestPending)))),
		FundRequestsApproved:  int64(getCounterValue(m.fundTransitions.WithLabelValues(string(domain.FundRequestApproved)))),
		FundRequestsRejected:  int64(getCounterValue(m.fundTransitions.WithLabelValues(string(domain.FundRequestRejected)))),
		Distributions:         int64(sumCounterVec(m.distributions)),
		BalanceConflicts:      int64(getCounterValue(m.balanceConflicts)),
		CompensationFailures:  int64(getCounterValue(m.compensationFailures)),
		ExternalErrors:        int64(sumCounterVec(m.externalErrors)),
		DashboardCacheHitRate: hitRate,
		Period:                "since_start",
	}
}

// getCounterValue extracts the current float64 value of a counter.
func getCounterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// sumCounterVec adds up every label combination of a CounterVec.
func sumCounterVec(cv *prometheus.CounterVec) float64 {
	ch := make(chan prometheus.Metric, 32)
	go func() {
		cv.Collect(ch)
		close(ch)
	}()

	total := float64(0)
	for metric := range ch {
		m := &dto.Metric{}
		if err := metric.Write(m); err != nil {
			continue
		}
		if m.Counter != nil && m.Counter.Value != nil {
			total += *m.Counter.Value
		}
	}
	return total
}
