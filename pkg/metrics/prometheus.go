package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	chartsBuilt     *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	recordsIngested *prometheus.CounterVec
	latency         *prometheus.HistogramVec
}

// New registers the recorder on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the recorder on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		chartsBuilt: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energyview_charts_built_total",
				Help: "Pie charts built per source and view",
			},
			[]string{"source", "view"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energyview_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		recordsIngested: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "energyview_partition_sums_ingested_total",
				Help: "Partition sum records written from the ingest topic",
			},
			[]string{"source"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "energyview_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordChartBuilt counts a chart served for source and view.
func (r *Recorder) RecordChartBuilt(source, view string) {
	r.chartsBuilt.WithLabelValues(source, view).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordRecordsIngested adds n ingested partition sums for source.
func (r *Recorder) RecordRecordsIngested(source string, n int) {
	r.recordsIngested.WithLabelValues(source).Add(float64(n))
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
