// Package metrics exposes tracker run statistics as Prometheus metrics and
// writes them for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	ftracker "github.com/lucasjlepore/fit-tracker"
)

const namespace = "ftracker"

// Recorder collects tracker metrics in its own registry.
type Recorder struct {
	registry *prometheus.Registry

	reports  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	calories *prometheus.CounterVec
	distance *prometheus.CounterVec
	lastRun  prometheus.Gauge
}

// NewRecorder builds a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Number of workout reports computed per kind.",
		}, []string{"kind"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejected_total",
			Help:      "Number of rejected inputs grouped by reason.",
		}, []string{"reason"}),
		calories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calories_kcal_total",
			Help:      "Kilocalories spent across all reported workouts per kind.",
		}, []string{"kind"}),
		distance: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distance_km_total",
			Help:      "Kilometers covered across all reported workouts per kind.",
		}, []string{"kind"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the most recent observed run.",
		}),
	}
	r.registry.MustRegister(r.reports, r.rejected, r.calories, r.distance, r.lastRun)
	return r
}

// Registry returns the registry backing r.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Observe records one batch of outcomes finished at ts.
func (r *Recorder) Observe(outcomes []ftracker.Outcome, ts time.Time) {
	for _, o := range outcomes {
		if !o.OK() {
			r.rejected.WithLabelValues(ftracker.RejectReason(o.Err)).Inc()
			continue
		}
		r.reports.WithLabelValues(o.Report.Kind).Inc()
		r.calories.WithLabelValues(o.Report.Kind).Add(o.Report.Calories)
		r.distance.WithLabelValues(o.Report.Kind).Add(o.Report.DistanceKM)
	}
	if !ts.IsZero() {
		r.lastRun.Set(float64(ts.Unix()))
	}
}

// WriteTextfile atomically writes the current metrics to path.
func (r *Recorder) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("metrics: create textfile dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: write textfile: %w", err)
	}
	return nil
}
