// Package metrics collects per-run export counters and writes them in the
// Prometheus text format for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a private registry so runs never share state. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	FramesExtractedTotal prometheus.Counter
	AnimatedAssetsTotal  prometheus.Counter
	FailuresTotal        *prometheus.CounterVec
	ExportDuration       *prometheus.HistogramVec
	MarkersExported      prometheus.Gauge
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		FramesExtractedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "markers_frames_extracted_total",
			Help: "Total number of still frames written",
		}),
		AnimatedAssetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "markers_animated_assets_total",
			Help: "Total number of animated thumbnails written",
		}),
		FailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "markers_failures_total",
			Help: "Total number of export failures, by kind",
		}, []string{"kind"}),
		ExportDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "markers_export_duration_seconds",
			Help:    "Duration of export runs",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"profile"}),
		MarkersExported: factory.NewGauge(prometheus.GaugeOpts{
			Name: "markers_exported",
			Help: "Number of markers in the last export",
		}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) IncFrames() {
	if r != nil {
		r.FramesExtractedTotal.Inc()
	}
}

func (r *Recorder) IncAnimated() {
	if r != nil {
		r.AnimatedAssetsTotal.Inc()
	}
}

func (r *Recorder) IncFailure(kind string) {
	if r != nil {
		r.FailuresTotal.WithLabelValues(kind).Inc()
	}
}

// ObserveExport records a finished run.
func (r *Recorder) ObserveExport(profile string, d time.Duration, markers int) {
	if r == nil {
		return
	}
	r.ExportDuration.WithLabelValues(profile).Observe(d.Seconds())
	r.MarkersExported.Set(float64(markers))
}

// WriteTextfile writes all metrics to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
