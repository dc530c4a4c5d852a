package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "planwise"

// Metrics collects counters for the action pipeline and the categorizer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	intents         *prometheus.CounterVec
	actions         *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
	categorizations *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// Passing nil uses a private registry, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		intents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intents_total",
			Help:      "Classified message intents by intent and deciding stage.",
		}, []string{"intent", "stage"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Processed actions by kind and outcome.",
		}, []string{"kind", "outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Fallback stages taken by component.",
		}, []string{"component", "stage"}),
		categorizations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "categorizations_total",
			Help:      "Event categorizations by category and decision path.",
		}, []string{"category", "path"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "action_duration_seconds",
			Help:      "Wall time of one processed message.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"kind"}),
	}
	reg.MustRegister(m.intents, m.actions, m.fallbacks, m.categorizations, m.duration)
	return m
}

// RecordIntent records a classified intent.
func (m *Metrics) RecordIntent(intent, stage string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(intent, stage).Inc()
}

// RecordAction records a finished action and its duration.
func (m *Metrics) RecordAction(kind, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.actions.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordFallback records that component fell through to stage.
func (m *Metrics) RecordFallback(component, stage string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(component, stage).Inc()
}

// RecordCategorization records a categorizer decision.
func (m *Metrics) RecordCategorization(category, path string) {
	if m == nil {
		return
	}
	m.categorizations.WithLabelValues(category, path).Inc()
}
