// Package metrics exposes Prometheus collectors for the monitor.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	monitorRunsTotal          *prometheus.CounterVec
	monitorRunDurationSeconds prometheus.Histogram
	monitorEntriesExtracted   prometheus.Histogram
	monitorNotified           prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		monitorRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pubwatch_runs_total",
				Help: "Total number of monitoring runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		monitorRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pubwatch_run_duration_seconds",
				Help:    "Histogram of end-to-end run durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)

		monitorEntriesExtracted = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pubwatch_entries_extracted",
				Help:    "Histogram of entries extracted per run.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
			},
		)

		monitorNotified = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "pubwatch_notified",
				Help: "1 once the one-time notification has fired, else 0.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records the outcome and duration of one monitoring run.
func ObserveRun(outcome string, duration time.Duration) {
	Init()
	monitorRunsTotal.WithLabelValues(outcome).Inc()
	monitorRunDurationSeconds.Observe(duration.Seconds())
}

// ObserveEntries records how many entries the extractor produced.
func ObserveEntries(count int) {
	Init()
	monitorEntriesExtracted.Observe(float64(count))
}

// SetNotified reflects the persisted notified flag.
func SetNotified(notified bool) {
	Init()
	if notified {
		monitorNotified.Set(1)
		return
	}
	monitorNotified.Set(0)
}
