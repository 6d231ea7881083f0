package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	snapshotsWritten *prometheus.CounterVec
	errorsTotal      *prometheus.CounterVec
	syntheticSeries  *prometheus.CounterVec
	lastPrice        *prometheus.GaugeVec
	latency          *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		snapshotsWritten: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emapull_snapshots_written_total",
				Help: "Total number of snapshots written to the cache",
			},
			[]string{"symbol"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emapull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		syntheticSeries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emapull_synthetic_series_total",
				Help: "Total number of synthetic candle series substituted for live data",
			},
			[]string{"symbol"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "emapull_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "emapull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordSnapshotWritten records a snapshot written for a symbol.
func (r *Recorder) RecordSnapshotWritten(symbol string) {
	r.snapshotsWritten.WithLabelValues(symbol).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSyntheticSeries records a synthetic-data fallback for a symbol.
func (r *Recorder) RecordSyntheticSeries(symbol string) {
	r.syntheticSeries.WithLabelValues(symbol).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
