// Package metrics exposes Prometheus collectors for the scraper.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	tasksTotal          *prometheus.CounterVec
	taskAttemptsTotal   prometheus.Counter
	taskDurationSeconds prometheus.Histogram
	tabularRowsTotal    prometheus.Counter
	activeWorkers       prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		tasksTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gfscraper_tasks_total",
				Help: "Total number of flight queries executed, labeled by status.",
			},
			[]string{"status"},
		)

		taskAttemptsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gfscraper_task_attempts_total",
				Help: "Total number of fetch attempts across all queries.",
			},
		)

		taskDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "gfscraper_task_duration_seconds",
				Help:    "Histogram of per-query wall time including retries.",
				Buckets: []float64{1, 2, 5, 10, 20, 45, 90, 180},
			},
		)

		tabularRowsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "gfscraper_tabular_rows_total",
				Help: "Total number of rows written to the tabular store.",
			},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "gfscraper_active_workers",
				Help: "Number of workers currently executing a query.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveTask records one finished query.
func ObserveTask(status string, attempts int, durationSeconds float64) {
	if tasksTotal == nil {
		return
	}
	tasksTotal.WithLabelValues(status).Inc()
	taskAttemptsTotal.Add(float64(attempts))
	taskDurationSeconds.Observe(durationSeconds)
}

// AddTabularRows counts rows appended to the tabular store.
func AddTabularRows(n int) {
	if tabularRowsTotal == nil || n <= 0 {
		return
	}
	tabularRowsTotal.Add(float64(n))
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Inc()
	}
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if activeWorkers != nil {
		activeWorkers.Dec()
	}
}
