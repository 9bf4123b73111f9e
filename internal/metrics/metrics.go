// Package metrics turns a finished walk into Prometheus series and writes
// them for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"makeroom/internal/walker"
)

// Recorder holds the per-run registry.
type Recorder struct {
	Registry *prometheus.Registry

	files              *prometheus.CounterVec
	bytesProcessed     prometheus.Gauge
	outputBytes        prometheus.Gauge
	reclaimedBytes     prometheus.Gauge
	budgetBytes        prometheus.Gauge
	budgetReached      prometheus.Gauge
	interrupted        prometheus.Gauge
	runDuration        prometheus.Gauge
	lastRun            prometheus.Gauge
	conversionDuration *prometheus.HistogramVec
}

// NewRecorder registers the run metrics on a fresh registry.
func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Recorder{
		Registry: registry,
		files: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "makeroom_files_total",
				Help: "Media files visited in the last run, by action",
			},
			[]string{"action", "kind"},
		),
		bytesProcessed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_bytes_processed",
			Help: "Original bytes of qualifying files handled in the last run",
		}),
		outputBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_output_bytes",
			Help: "Bytes written by conversions in the last run",
		}),
		reclaimedBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_reclaimable_bytes",
			Help: "Bytes freed once converted originals are removed",
		}),
		budgetBytes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_budget_bytes",
			Help: "Byte budget of the last run",
		}),
		budgetReached: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_budget_reached",
			Help: "1 when the last run stopped on its budget",
		}),
		interrupted: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_interrupted",
			Help: "1 when the last run was cancelled",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "makeroom_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		conversionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "makeroom_conversion_duration_seconds",
				Help:    "Time spent in each successful conversion",
				Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600, 10800},
			},
			[]string{"kind"},
		),
	}
}

// Observe records the outcome of a walk.
func (r *Recorder) Observe(result walker.Result, finished time.Time) {
	for _, outcome := range result.Outcomes {
		r.files.WithLabelValues(string(outcome.Action), outcome.Kind.String()).Inc()
		if outcome.Action == walker.ActionConverted {
			r.conversionDuration.WithLabelValues(outcome.Kind.String()).Observe(outcome.Elapsed.Seconds())
		}
	}
	r.bytesProcessed.Set(float64(result.BytesProcessed))
	r.outputBytes.Set(float64(result.OutputBytes))
	r.reclaimedBytes.Set(float64(result.Reclaimed()))
	r.budgetBytes.Set(float64(result.Options.Budget))
	r.budgetReached.Set(boolValue(result.BudgetReached))
	r.interrupted.Set(boolValue(result.Interrupted))
	r.runDuration.Set(result.Elapsed.Seconds())
	r.lastRun.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes the registry in text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func boolValue(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
