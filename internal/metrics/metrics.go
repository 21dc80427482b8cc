// Package metrics exposes Prometheus collectors for the harvester.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	urlsProcessedTotal *prometheus.CounterVec
	emailsSavedTotal   *prometheus.CounterVec
	runDurationSeconds prometheus.Histogram

	once sync.Once
)

// Init registers the collectors against the default registry. It is safe to
// call multiple times.
func Init() {
	once.Do(func() {
		urlsProcessedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_urls_processed_total",
				Help: "Discovered URLs processed, labeled by terminal result.",
			},
			[]string{"result"},
		)

		emailsSavedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "harvester_emails_saved_total",
				Help: "Extracted emails persisted, labeled by source tag.",
			},
			[]string{"source"},
		)

		runDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "harvester_run_duration_seconds",
				Help:    "Wall time per completed run.",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
			},
		)
	})
}

// URLProcessed increments the processed-URL counter for a terminal result.
func URLProcessed(result string) {
	Init()
	urlsProcessedTotal.WithLabelValues(result).Inc()
}

// EmailSaved increments the saved-email counter for a source tag.
func EmailSaved(source string) {
	Init()
	emailsSavedTotal.WithLabelValues(source).Inc()
}

// RunDuration records the wall time of a completed run.
func RunDuration(d time.Duration) {
	Init()
	runDurationSeconds.Observe(d.Seconds())
}
