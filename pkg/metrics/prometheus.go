// Package metrics provides Prometheus metrics for the rosterquiz game engine.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Latency buckets in milliseconds for store operations.
var defaultLatencyBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100} //nolint:gochecknoglobals // constant bucket layout

// Manager manages all Prometheus metrics for the game engine.
type Manager struct {
	namespace    string
	subsystem    string
	enabled      bool
	customLabels map[string]string
	registry     prometheus.Registerer

	// Gameplay
	guesses          *prometheus.CounterVec
	sessionsFinished *prometheus.CounterVec
	runsStarted      *prometheus.CounterVec
	runsFinished     *prometheus.CounterVec
	activeSessions   prometheus.Gauge

	// Rotation
	rotationDraws  *prometheus.CounterVec
	rotationResets *prometheus.CounterVec
	dailyRotations prometheus.Counter
	corruptState   *prometheus.CounterVec

	// Store
	storeOperations *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before anything records.
func Init(opts ...Option) {
	registry := prometheus.NewRegistry()
	customRegistry = registry
	globalManager = NewManager(append(opts, WithPrometheusRegistry(registry))...)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:    "rosterquiz",
		subsystem:    "game",
		enabled:      true,
		customLabels: make(map[string]string),
		registry:     prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.guesses = m.counterVec("guesses_total", "Guesses submitted, by mode and outcome", "mode", "outcome")
	m.sessionsFinished = m.counterVec("sessions_finished_total", "Guess sessions that reached a terminal state", "mode", "status")
	m.runsStarted = m.counterVec("runs_started_total", "Mode selections that started a run", "mode")
	m.runsFinished = m.counterVec("runs_finished_total", "Gauntlet and reverse runs that ended", "mode", "status")
	m.activeSessions = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "active_sessions",
		Help:        "Sessions currently accepting guesses",
		ConstLabels: m.customLabels,
	})

	m.rotationDraws = m.counterVec("rotation_draws_total", "Teams drawn from a rotation pool", "pool")
	m.rotationResets = m.counterVec("rotation_resets_total", "Rotation pools refilled with every team", "pool")
	m.dailyRotations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "daily_rotations_total",
		Help:        "Daily challenge team changes",
		ConstLabels: m.customLabels,
	})
	m.corruptState = m.counterVec("corrupt_state_total", "Persisted values discarded as unreadable", "key")

	m.storeOperations = m.counterVec("store_operations_total", "Persisted state reads and writes", "op", "result")
	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "store_latency_milliseconds",
		Help:        "Persisted state operation latency in milliseconds",
		Buckets:     defaultLatencyBuckets,
		ConstLabels: m.customLabels,
	}, []string{"op"})

	m.errorsByComponent = m.counterVec("errors_by_component_total", "Errors by component and type", "component", "error_type")
}

// RecordGuess counts a guess outcome.
func RecordGuess(mode, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.guesses.WithLabelValues(mode, outcome).Inc()
}

// RecordSessionFinished counts a session reaching won or failed.
func RecordSessionFinished(mode, status string) {
	if !globalManager.enabled {
		return
	}
	globalManager.sessionsFinished.WithLabelValues(mode, status).Inc()
}

// RecordRunStarted counts a mode selection.
func RecordRunStarted(mode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.runsStarted.WithLabelValues(mode).Inc()
}

// RecordRunFinished counts a multi-session run ending.
func RecordRunFinished(mode, status string) {
	if !globalManager.enabled {
		return
	}
	globalManager.runsFinished.WithLabelValues(mode, status).Inc()
}

// SetActiveSessions sets the number of sessions accepting guesses.
func SetActiveSessions(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.activeSessions.Set(float64(n))
}

// RecordRotationDraw counts a team drawn from the named pool.
func RecordRotationDraw(pool string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rotationDraws.WithLabelValues(pool).Inc()
}

// RecordRotationReset counts the named pool being refilled.
func RecordRotationReset(pool string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rotationResets.WithLabelValues(pool).Inc()
}

// RecordDailyRotation counts a daily challenge team change.
func RecordDailyRotation() {
	if !globalManager.enabled {
		return
	}
	globalManager.dailyRotations.Inc()
}

// RecordCorruptState counts a persisted value that could not be decoded.
func RecordCorruptState(key string) {
	if !globalManager.enabled {
		return
	}
	globalManager.corruptState.WithLabelValues(key).Inc()
}

// RecordStoreOperation counts a store call and observes its latency.
func RecordStoreOperation(op, result string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeOperations.WithLabelValues(op, result).Inc()
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every metric in the custom registry to path in the
// Prometheus text format, for pickup by a textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
