package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "scoreboard"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	listings     *prometheus.CounterVec
	titles       prometheus.Counter
	scoresWrite  prometheus.Histogram
	authAttempts *prometheus.CounterVec
	tokensIssued prometheus.Counter
	tokenChecks  *prometheus.CounterVec
}

// NewPrometheus creates a Recorder and registers its collectors on reg.
func NewPrometheus(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	p := &PrometheusRecorder{
		listings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_changes_total",
			Help:      "Listing mutations by operation.",
		}, []string{"op"}),
		titles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "title_updates_total",
			Help:      "Scoreboard title updates.",
		}),
		scoresWrite: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scores_write_duration_seconds",
			Help:      "Duration of scores map read-modify-write cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Access tokens issued.",
		}),
		tokenChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_checks_total",
			Help:      "Access token checks by result.",
		}, []string{"result"}),
	}

	collectors := []prometheus.Collector{
		p.listings, p.titles, p.scoresWrite, p.authAttempts, p.tokensIssued, p.tokenChecks,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// IncListingCreated increments listing created counter.
func (p *PrometheusRecorder) IncListingCreated() {
	p.listings.WithLabelValues("create").Inc()
}

// IncListingUpdated increments listing updated counter.
func (p *PrometheusRecorder) IncListingUpdated() {
	p.listings.WithLabelValues("update").Inc()
}

// IncListingDeleted increments listing deleted counter.
func (p *PrometheusRecorder) IncListingDeleted() {
	p.listings.WithLabelValues("delete").Inc()
}

// IncTitleUpdated increments title updated counter.
func (p *PrometheusRecorder) IncTitleUpdated() {
	p.titles.Inc()
}

// ObserveScoresWrite records a scores read-modify-write duration.
func (p *PrometheusRecorder) ObserveScoresWrite(duration time.Duration) {
	p.scoresWrite.Observe(duration.Seconds())
}

// IncAuthAttempt increments the counter for the given result.
func (p *PrometheusRecorder) IncAuthAttempt(result string) {
	p.authAttempts.WithLabelValues(result).Inc()
}

// IncTokenIssued increments issued token counter.
func (p *PrometheusRecorder) IncTokenIssued() {
	p.tokensIssued.Inc()
}

// IncTokenCheck increments the counter for the given result.
func (p *PrometheusRecorder) IncTokenCheck(result string) {
	p.tokenChecks.WithLabelValues(result).Inc()
}
