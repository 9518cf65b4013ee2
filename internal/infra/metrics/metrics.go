package metrics

// Per-run counters for the render pipeline, exported as a node_exporter
// textfile when a path is configured. All methods accept a nil *Recorder.

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fundrace"

type Recorder struct {
	registry       *prometheus.Registry
	observations   prometheus.Gauge
	framesBuilt    prometheus.Counter
	framesRendered prometheus.Counter
	renderSeconds  prometheus.Histogram
	failures       *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

// NewRecorder registers the pipeline metrics on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		observations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observations_loaded",
			Help:      "Observations left after normalization.",
		}),
		framesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_built_total",
			Help:      "Frames assembled from observations.",
		}),
		framesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Frames rasterized to images.",
		}),
		renderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_render_seconds",
			Help:      "Time to rasterize one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Pipeline failures by stage.",
		}, []string{"stage"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
	}
	r.registry.MustRegister(r.observations, r.framesBuilt, r.framesRendered, r.renderSeconds, r.failures, r.lastRun)
	return r
}

func (r *Recorder) ObservationsLoaded(n int) {
	if r == nil {
		return
	}
	r.observations.Set(float64(n))
}

func (r *Recorder) FramesBuilt(n int) {
	if r == nil {
		return
	}
	r.framesBuilt.Add(float64(n))
}

func (r *Recorder) FrameRendered(d time.Duration) {
	if r == nil {
		return
	}
	r.framesRendered.Inc()
	r.renderSeconds.Observe(d.Seconds())
}

func (r *Recorder) Failed(stage string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(stage).Inc()
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile stamps the finish time and writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	r.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
