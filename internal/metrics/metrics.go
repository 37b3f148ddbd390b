// Package metrics exposes Prometheus collectors for the submission engine.
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
	submissionsTotal      *prometheus.CounterVec
	submissionRetries     prometheus.Counter
	submittedSecondsTotal prometheus.Counter
	itemsTotal            *prometheus.CounterVec
	catalogPagesTotal     *prometheus.CounterVec
	activeWorkers         prometheus.Gauge
	pacingDelaySeconds    prometheus.Histogram

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		submissionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studypacer_submissions_total",
				Help: "Total number of progress submissions, labeled by result.",
			},
			[]string{"result"},
		)

		submissionRetries = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "studypacer_submission_retries_total",
				Help: "Total number of in-submitter retry attempts.",
			},
		)

		submittedSecondsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "studypacer_submitted_seconds_total",
				Help: "Total study seconds accepted by the platform.",
			},
		)

		itemsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studypacer_items_total",
				Help: "Total number of catalog items processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		catalogPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studypacer_catalog_pages_total",
				Help: "Total number of catalog pages fetched, labeled by result.",
			},
			[]string{"result"},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "studypacer_active_workers",
				Help: "Number of submission workers currently running.",
			},
		)

		pacingDelaySeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "studypacer_pacing_delay_seconds",
				Help:    "Histogram of pacing and rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSubmission increments the submission counter for the given result.
func ObserveSubmission(result string, seconds int) {
	if submissionsTotal == nil {
		return
	}
	submissionsTotal.WithLabelValues(result).Inc()
	if result == "success" && seconds > 0 {
		submittedSecondsTotal.Add(float64(seconds))
	}
}

// ObserveSubmissionRetry counts one retry inside the submitter.
func ObserveSubmissionRetry() {
	if submissionRetries == nil {
		return
	}
	submissionRetries.Inc()
}

// ObserveItem increments the per-item outcome counter.
func ObserveItem(outcome string) {
	if itemsTotal == nil {
		return
	}
	itemsTotal.WithLabelValues(outcome).Inc()
}

// ObserveCatalogPage counts one catalog page fetch.
func ObserveCatalogPage(result string) {
	if catalogPagesTotal == nil {
		return
	}
	catalogPagesTotal.WithLabelValues(result).Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if activeWorkers == nil {
		return
	}
	activeWorkers.Dec()
}

// ObservePacingDelay records the duration of a pacing wait.
func ObservePacingDelay(duration time.Duration) {
	if pacingDelaySeconds == nil {
		return
	}
	pacingDelaySeconds.Observe(duration.Seconds())
}
