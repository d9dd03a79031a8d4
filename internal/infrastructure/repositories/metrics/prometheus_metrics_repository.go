package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portetrack"

// PrometheusMetricsRepository keeps the run metrics on its own registry so
// that a one-shot CLI run can dump them for the node_exporter textfile collector.
type PrometheusMetricsRepository struct {
	registry *prometheus.Registry

	components *prometheus.CounterVec
	decisions  *prometheus.CounterVec
	pipelines  *prometheus.CounterVec
	stages     *prometheus.HistogramVec
	lastRun    prometheus.Gauge
}

// NewPrometheusMetricsRepository registers every collector on a fresh registry.
func NewPrometheusMetricsRepository() *PrometheusMetricsRepository {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &PrometheusMetricsRepository{
		registry: registry,
		components: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "monitor",
			Name:      "components_total",
			Help:      "Components checked by outcome",
		}, []string{"outcome"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "decisions_total",
			Help:      "Upgrade decisions taken by the policy",
		}, []string{"decision"}),
		pipelines: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "executions_total",
			Help:      "Implementation pipeline executions by final status",
		}, []string{"status"}),
		stages: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 1800},
		}, []string{"stage", "status"}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last metrics dump",
		}),
	}
}

func (it *PrometheusMetricsRepository) ObserveComponent(outcome string) {
	it.components.WithLabelValues(outcome).Inc()
}

func (it *PrometheusMetricsRepository) ObserveDecision(decision string) {
	it.decisions.WithLabelValues(decision).Inc()
}

func (it *PrometheusMetricsRepository) ObservePipeline(status string) {
	it.pipelines.WithLabelValues(status).Inc()
}

func (it *PrometheusMetricsRepository) ObserveStage(stage, status string, duration time.Duration) {
	it.stages.WithLabelValues(stage, status).Observe(duration.Seconds())
}

// WriteTextfile writes every metric to path, atomically.
func (it *PrometheusMetricsRepository) WriteTextfile(path string) error {
	it.lastRun.SetToCurrentTime()
	if err := prometheus.WriteToTextfile(path, it.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Registry exposes the underlying registry.
func (it *PrometheusMetricsRepository) Registry() *prometheus.Registry {
	return it.registry
}
