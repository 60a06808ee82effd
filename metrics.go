package growbox

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects controller instrumentation on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	TickDuration prometheus.Histogram
	TickCount    prometheus.Counter
	RuleOutcomes *prometheus.CounterVec
	RuleErrors   *prometheus.CounterVec
	RelayState   *prometheus.GaugeVec
	SensorValue  *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		TickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "growbox",
			Name:      "tick_duration_seconds",
			Help:      "Time spent evaluating the rule set on each tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		TickCount: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "growbox",
			Name:      "ticks_total",
			Help:      "Number of completed evaluation ticks.",
		}),
		RuleOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "growbox",
			Name:      "rule_outcomes_total",
			Help:      "Rule evaluation outcomes by relay and outcome kind.",
		}, []string{"relay", "outcome"}),
		RuleErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "growbox",
			Name:      "rule_errors_total",
			Help:      "Rule evaluation errors by relay and error code.",
		}, []string{"relay", "code"}),
		RelayState: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "growbox",
			Name:      "relay_state",
			Help:      "Physical relay state, 1 when energized.",
		}, []string{"relay"}),
		SensorValue: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "growbox",
			Name:      "sensor_value",
			Help:      "Latest sensor readings by name.",
		}, []string{"sensor"}),
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
