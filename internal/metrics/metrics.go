// Package metrics records per-run counters for node-exporter's textfile
// collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"daysheet/internal/model"
)

const namespace = "daysheet"

// Recorder owns a private registry so successive runs in one process do not
// accumulate.
type Recorder struct {
	registry *prometheus.Registry

	collected *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	skipped   *prometheus.CounterVec
	days      *prometheus.GaugeVec
	lastRun   prometheus.Gauge
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		collected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_collected_total",
			Help:      "Events read from sources, by kind.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Events outside the reporting period, by kind.",
		}, []string{"kind"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_skipped_total",
			Help:      "Malformed input rows skipped, by source.",
		}, []string{"source"}),
		days: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "days",
			Help:      "Days in the report, by state (active or empty).",
		}, []string{"state"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last completed run.",
		}),
	}
	r.registry.MustRegister(r.collected, r.dropped, r.skipped, r.days, r.lastRun)

	// Zero series so every kind shows up in the textfile.
	for _, k := range model.Kinds {
		r.collected.WithLabelValues(string(k))
		r.dropped.WithLabelValues(string(k))
	}
	return r
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) Collected(events []model.RawEvent) {
	for _, ev := range events {
		r.collected.WithLabelValues(string(ev.Kind)).Inc()
	}
}

func (r *Recorder) Dropped(byKind map[model.Kind]int) {
	for k, n := range byKind {
		r.dropped.WithLabelValues(string(k)).Add(float64(n))
	}
}

func (r *Recorder) Skipped(source string, n int) {
	r.skipped.WithLabelValues(source).Add(float64(n))
}

// Days sets the active/empty split of the completed calendar.
func (r *Recorder) Days(records []model.DayRecord) {
	active := 0
	for _, rec := range records {
		if len(rec.Summary) > 0 {
			active++
		}
	}
	r.days.WithLabelValues("active").Set(float64(active))
	r.days.WithLabelValues("empty").Set(float64(len(records) - active))
}

func (r *Recorder) Finished(at time.Time) {
	r.lastRun.Set(float64(at.Unix()))
}

// WriteTextfile writes the registry in the Prometheus text format. The
// write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}
