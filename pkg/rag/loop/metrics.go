package loop

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records loop behaviour. A nil *Metrics is valid and records nothing.
type Metrics struct {
	attempts     prometheus.Histogram
	outcomes     *prometheus.CounterVec
	stageLatency *prometheus.HistogramVec
	degradations *prometheus.CounterVec
}

// NewMetrics registers the loop collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "axiom_verify_attempts",
			Help:    "Retrieval-draft-verify cycles used per request.",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		}),
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axiom_verify_outcomes_total",
			Help: "Finished verification loops by terminal status.",
		}, []string{"status"}),
		stageLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "axiom_verify_stage_duration_seconds",
			Help:    "Latency of each loop stage.",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		degradations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "axiom_retrieval_degradations_total",
			Help: "Retrievals that fell back to empty evidence.",
		}, []string{"reason"}),
	}
}

func (m *Metrics) observeOutcome(status Status, attempts int) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(string(status)).Inc()
	m.attempts.Observe(float64(attempts))
}

func (m *Metrics) observeStage(stage Status, d time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(string(stage)).Observe(d.Seconds())
}

// RetrievalDegraded matches evidence.WithDegradationHook.
func (m *Metrics) RetrievalDegraded(reason string) {
	if m == nil {
		return
	}
	m.degradations.WithLabelValues(reason).Inc()
}
