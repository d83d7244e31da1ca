package metrics

import (
	"time"

	"FxPulse/internal/domain/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	passDuration prometheus.Histogram
	score        *prometheus.GaugeVec
	status       *prometheus.CounterVec
	dataErrors   *prometheus.CounterVec
	sinkErrors   *prometheus.CounterVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder registered on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		passDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxpulse_pass_duration_seconds",
				Help:    "Duration of one evaluation pass over the universe",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		score: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fxpulse_instrument_score",
				Help: "Last displacement score per instrument",
			},
			[]string{"symbol"},
		),
		status: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_instrument_status_total",
				Help: "Scored instruments by status label",
			},
			[]string{"symbol", "status"},
		),
		dataErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_data_errors_total",
				Help: "Market data and contract errors by kind",
			},
			[]string{"kind"},
		),
		sinkErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxpulse_sink_errors_total",
				Help: "Failed pass deliveries by sink",
			},
			[]string{"sink"},
		),
	}
}

// RecordPass records the duration of an evaluation pass.
func (r *Recorder) RecordPass(d time.Duration) {
	r.passDuration.Observe(d.Seconds())
}

// RecordScore records the score and status of one instrument.
func (r *Recorder) RecordScore(symbol string, result models.ScoreResult) {
	r.score.WithLabelValues(symbol).Set(float64(result.Score))
	r.status.WithLabelValues(symbol, string(result.Status)).Inc()
}

// RecordDataError counts a data error of the given kind.
func (r *Recorder) RecordDataError(kind string) {
	r.dataErrors.WithLabelValues(kind).Inc()
}

// RecordSinkError counts a failed delivery.
func (r *Recorder) RecordSinkError(sink string) {
	r.sinkErrors.WithLabelValues(sink).Inc()
}
