package metrics

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nonoforge_generation_duration_seconds",
			Help:    "Wall-clock duration of a generation request by outcome",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"outcome"}, // "solved", "exhausted", "cancelled"
	)

	searchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nonoforge_search_attempts_total",
			Help: "Candidate grids drawn across all workers",
		},
		[]string{"outcome"}, // "accepted", "rejected"
	)

	activeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nonoforge_active_workers",
			Help: "Number of workers in the current pool",
		},
	)

	staleMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nonoforge_stale_messages_total",
			Help: "Worker messages discarded because their epoch was superseded",
		},
	)
)

// Collector provides convenience methods for recording metrics
type Collector struct {
	logger *slog.Logger
}

// NewCollector creates a new metrics collector
func NewCollector(logger *slog.Logger) *Collector {
	return &Collector{logger: logger}
}

// RecordGeneration records the duration of a finished generation request
func (c *Collector) RecordGeneration(outcome string, duration time.Duration) {
	generationDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordAttempt counts one candidate draw
func (c *Collector) RecordAttempt(accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	searchAttempts.WithLabelValues(outcome).Inc()
}

// SetActiveWorkers sets the current worker count
func (c *Collector) SetActiveWorkers(count int) {
	activeWorkers.Set(float64(count))
}

// RecordStaleMessage counts a discarded out-of-epoch message
func (c *Collector) RecordStaleMessage() {
	staleMessages.Inc()
}
