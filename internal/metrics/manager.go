// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests            *prometheus.CounterVec
	CounterMutations           *prometheus.CounterVec
	CounterPersistenceFailures prometheus.Counter
	CounterIngestedWorkouts    prometheus.Counter

	// gauges
	GaugeRequests  prometheus.Gauge
	GaugeExercises prometheus.Gauge
	GaugeWorkouts  prometheus.Gauge

	// histograms
	HistRequestDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("liftlog", "test", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("liftlog", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "mutations_total",
			Help:      "Repository mutations by operation",
		}, []string{"op"}),
		CounterPersistenceFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "persistence_failures_total",
			Help:      "Snapshot saves that failed after the change was applied in memory",
		}),
		CounterIngestedWorkouts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "ingested_workouts_total",
			Help:      "Workouts created from imported training logs",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		GaugeExercises: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "exercises",
			Help:      "Number of exercises in the catalog",
		}),
		GaugeWorkouts: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workouts",
			Help:      "Number of logged workouts",
		}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
	}
}

// ObserveCollections records the current collection sizes.
func (m *Manager) ObserveCollections(exercises, workouts int) {
	m.GaugeExercises.Set(float64(exercises))
	m.GaugeWorkouts.Set(float64(workouts))
}

// RecordMutation counts a repository write and, when persisting it failed,
// the failure as well.
func (m *Manager) RecordMutation(op string, persistFailed bool) {
	m.CounterMutations.WithLabelValues(op).Inc()
	if persistFailed {
		m.CounterPersistenceFailures.Inc()
	}
}
