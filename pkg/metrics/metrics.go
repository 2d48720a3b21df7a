package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	SequenceAllocations *prometheus.CounterVec
	ValidationOutcomes  *prometheus.CounterVec
	EligibilityLookups  prometheus.Counter
	BatchSubmissions    *prometheus.CounterVec
	ClaimsSubmitted     prometheus.Counter

	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SequenceAllocations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_allocations_total",
			Help:      "Control numbers allocated, by counter",
		}, []string{"counter"}),
		ValidationOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_validations_total",
			Help:      "Session validation verdicts, by outcome and invalidation type",
		}, []string{"outcome", "type"}),
		EligibilityLookups: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_lookups_total",
			Help:      "Eligibility refresh calls issued during validation",
		}),
		BatchSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_submissions_total",
			Help:      "Claim batch submissions, by result",
		}, []string{"result"}),
		ClaimsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_submitted_total",
			Help:      "Sessions included in accepted batches",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "path", "status"}),
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests processed",
		}, []string{"method", "path", "status"}),
	}
}
