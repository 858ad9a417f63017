// Package metrics records analysis counters in a private Prometheus
// registry. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/estudio/internal/model"
)

// Metrics holds the estudio collectors
type Metrics struct {
	registry *prometheus.Registry

	Analyses      *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
	Verdicts      *prometheus.CounterVec
	Duration      prometheus.Histogram
}

// New creates the collectors and registers them
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estudio_analyses_total",
				Help: "Match analyses by outcome status",
			},
			[]string{"status"},
		),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estudio_cache_requests_total",
				Help: "Analysis cache lookups by result",
			},
			[]string{"result"},
		),

		Verdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estudio_verdicts_total",
				Help: "Precedent verdicts by market and verdict",
			},
			[]string{"market", "verdict"},
		),

		Duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "estudio_analysis_duration_seconds",
				Help:    "Time to produce one analysis, cache hits included",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
		),
	}

	m.registry.MustRegister(m.Analyses, m.CacheRequests, m.Verdicts, m.Duration)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// CacheHit counts a cache lookup
func (m *Metrics) CacheHit(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheRequests.WithLabelValues(result).Inc()
}

// Failed counts an analysis that returned an error
func (m *Metrics) Failed(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Analyses.WithLabelValues("error").Inc()
	m.Duration.Observe(elapsed.Seconds())
}

// Observe counts a finished report and its direct verdicts
func (m *Metrics) Observe(report *model.AnalysisReport, elapsed time.Duration) {
	if m == nil || report == nil {
		return
	}
	m.Analyses.WithLabelValues(string(report.Market.Status)).Inc()
	m.Duration.Observe(elapsed.Seconds())

	for _, pa := range []model.PrecedentAnalysis{report.Market.Stadium, report.Market.General} {
		if pa.Handicap.Status == model.StatusAnalyzed {
			m.Verdicts.WithLabelValues("handicap", pa.Handicap.Outcome.Verdict.String()).Inc()
		}
		if pa.Goals.Status == model.StatusAnalyzed {
			m.Verdicts.WithLabelValues("goals", pa.Goals.Outcome.Verdict.String()).Inc()
		}
	}
}

// WriteToTextfile writes the registry in the node_exporter textfile
// format. Empty path is a no-op.
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
