package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder holds the Prometheus collectors for the generation pipeline.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	Admissions  *prometheus.CounterVec
	Generations *prometheus.CounterVec
	KeySources  *prometheus.CounterVec
	Consumption *prometheus.CounterVec
	Latency     *prometheus.HistogramVec
}

// NewRecorder registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		Admissions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nusaai_admission_decisions_total",
			Help: "Admission gate decisions by caller kind and outcome",
		}, []string{"caller", "outcome"}),

		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nusaai_generations_total",
			Help: "Generation calls by request kind and outcome",
		}, []string{"kind", "outcome"}),

		KeySources: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nusaai_key_resolutions_total",
			Help: "Resolved API keys by source",
		}, []string{"source"}),

		Consumption: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "nusaai_consumption_total",
			Help: "Usage accounting results by caller kind and outcome",
		}, []string{"caller", "outcome"}),

		Latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nusaai_provider_duration_seconds",
			Help:    "Latency of provider calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
	}
}

func (r *Recorder) Admission(caller, outcome string) {
	if r == nil {
		return
	}
	r.Admissions.WithLabelValues(caller, outcome).Inc()
}

func (r *Recorder) Generation(kind, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.Generations.WithLabelValues(kind, outcome).Inc()
	r.Latency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (r *Recorder) KeySource(source string) {
	if r == nil {
		return
	}
	r.KeySources.WithLabelValues(source).Inc()
}

func (r *Recorder) Consumed(caller, outcome string) {
	if r == nil {
		return
	}
	r.Consumption.WithLabelValues(caller, outcome).Inc()
}
