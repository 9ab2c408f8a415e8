package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	windowsEvaluated *prometheus.CounterVec
	rowsPredicted    *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	trainSize        *prometheus.GaugeVec
	stageDuration    *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		windowsEvaluated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfold_windows_evaluated_total",
				Help: "Total number of walk-forward windows evaluated",
			},
			[]string{"run_id"},
		),
		rowsPredicted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfold_rows_predicted_total",
				Help: "Total number of out-of-sample rows predicted",
			},
			[]string{"run_id"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfold_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		trainSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finfold_train_rows",
				Help: "Training-slice row count of the most recent window",
			},
			[]string{"run_id"},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finfold_stage_duration_seconds",
				Help:    "Duration of evaluation stages in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
	}
}

// RecordWindowEvaluated records a completed walk-forward window.
func (r *Recorder) RecordWindowEvaluated(runID string) {
	r.windowsEvaluated.WithLabelValues(runID).Inc()
}

// RecordRowsPredicted records out-of-sample rows produced by a window.
func (r *Recorder) RecordRowsPredicted(runID string, n int) {
	r.rowsPredicted.WithLabelValues(runID).Add(float64(n))
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordTrainSize records the training-slice size of the latest window.
func (r *Recorder) RecordTrainSize(runID string, rows int) {
	r.trainSize.WithLabelValues(runID).Set(float64(rows))
}

// RecordStageLatency records stage latency in seconds.
func (r *Recorder) RecordStageLatency(stage string, seconds float64) {
	r.stageDuration.WithLabelValues(stage).Observe(seconds)
}
