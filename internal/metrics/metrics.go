package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prediction outcomes used as the outcome label.
const (
	OutcomeSuccess           = "success"
	OutcomeValidationError   = "validation_error"
	OutcomeModelInvocation   = "model_invocation_error"
	OutcomeModelReported     = "model_reported_error"
	OutcomeContractViolation = "contract_violation"
)

// Metrics holds the prediction collectors.
type Metrics struct {
	predictions   *prometheus.CounterVec
	modelDuration *prometheus.HistogramVec
}

// New registers the prediction collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "career_predictions_total",
				Help: "Total number of career predictions by outcome",
			},
			[]string{"outcome"},
		),
		modelDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "career_model_call_duration_seconds",
				Help:    "Duration of classification model calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),
	}
}

// ObservePrediction counts one finished prediction. Safe on a nil receiver.
func (m *Metrics) ObservePrediction(outcome string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

// ObserveModelCall records the latency of one model call. Safe on a nil receiver.
func (m *Metrics) ObserveModelCall(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.modelDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
