// Package metrics records load and render statistics on a private Prometheus
// registry. The registry is written as a node-exporter textfile rather than
// served, since doxyfront is a batch tool.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "doxyfront"

// Unit import outcomes.
const (
	UnitOK     = "ok"
	UnitFailed = "failed"
	UnitCached = "cached"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	UnitsTotal       *prometheus.CounterVec
	UnitSeconds      prometheus.Histogram
	StageSeconds     *prometheus.HistogramVec
	Definitions      prometheus.Gauge
	ReferencesTotal  *prometheus.CounterVec
	DiagnosticsTotal *prometheus.CounterVec
	PagesTotal       prometheus.Counter
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		UnitsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "units_total",
				Help:      "XML units processed by outcome",
			},
			[]string{"status"},
		),
		UnitSeconds: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "unit_import_seconds",
				Help:      "Time to read and import one XML unit",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		StageSeconds: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_seconds",
				Help:      "Duration of each pipeline stage",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		Definitions: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "definitions",
				Help:      "Definitions in the last built graph, roots included",
			},
		),
		ReferencesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "references_total",
				Help:      "Symbolic references by resolution outcome",
			},
			[]string{"state"},
		),
		DiagnosticsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Diagnostics by kind",
			},
			[]string{"kind"},
		),
		PagesTotal: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_written_total",
				Help:      "HTML pages written",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Unit records one unit import.
func (m *Metrics) Unit(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.UnitsTotal.WithLabelValues(status).Inc()
	if status != UnitCached {
		m.UnitSeconds.Observe(d.Seconds())
	}
}

// Stage records the duration of a named pipeline stage.
func (m *Metrics) Stage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageSeconds.WithLabelValues(stage).Observe(d.Seconds())
}

// Graph records the outcome of a graph build.
func (m *Metrics) Graph(definitions, resolved, unresolved int) {
	if m == nil {
		return
	}
	m.Definitions.Set(float64(definitions))
	m.ReferencesTotal.WithLabelValues("resolved").Add(float64(resolved))
	m.ReferencesTotal.WithLabelValues("unresolved").Add(float64(unresolved))
}

// Diagnostic counts one diagnostic of the given kind.
func (m *Metrics) Diagnostic(kind string) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(kind).Inc()
}

// Page counts one written page.
func (m *Metrics) Page() {
	if m == nil {
		return
	}
	m.PagesTotal.Inc()
}

// WriteTextfile writes the registry in the text exposition format. The file
// is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, m.reg), "writing metrics to %s", path)
}
