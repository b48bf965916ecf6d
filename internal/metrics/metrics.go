package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the compositing counters. Build one per registry.
type Metrics struct {
	CompositesTotal   *prometheus.CounterVec
	CompositeFailures *prometheus.CounterVec
	CompositeDuration prometheus.Histogram
	UploadsTotal      prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CompositesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobooth_composites_total",
				Help: "Composites written, by template",
			},
			[]string{"template"},
		),
		CompositeFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "photobooth_composite_failures_total",
				Help: "Composite requests that failed, by error code",
			},
			[]string{"code"},
		),
		CompositeDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "photobooth_composite_duration_seconds",
				Help:    "Time from request to written composite",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		UploadsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "photobooth_uploads_total",
				Help: "Browser frames accepted by the upload endpoint",
			},
		),
	}
}
