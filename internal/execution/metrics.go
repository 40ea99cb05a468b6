package execution

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics receives timing and count hooks from the field pipeline. A nil
// Metrics disables collection.
type Metrics interface {
	BeginFieldResolution(c *FieldContext)
	EndFieldResolution(c *FieldContext)
	DirectiveApplied(directive, phase string)
}

const namespace = "graphplan"

// PrometheusMetrics implements Metrics with Prometheus collectors.
type PrometheusMetrics struct {
	fieldDuration *prometheus.HistogramVec
	directives    *prometheus.CounterVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		fieldDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "field_resolution_duration_seconds",
				Help:      "Time spent resolving a field, including its directives.",
				Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 14), // 50µs to ~400ms
			},
			[]string{"type", "field"},
		),
		directives: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "directive_applications_total",
				Help:      "Number of directive applications by phase.",
			},
			[]string{"directive", "phase"},
		),
	}
}

// MustRegister registers the collectors with registry.
func (m *PrometheusMetrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(m.fieldDuration)
	registry.MustRegister(m.directives)
}

func (m *PrometheusMetrics) BeginFieldResolution(c *FieldContext) {}

func (m *PrometheusMetrics) EndFieldResolution(c *FieldContext) {
	m.fieldDuration.
		WithLabelValues(c.Invocation.ParentType.Name, c.Invocation.Field.Name).
		Observe(c.Elapsed().Seconds())
}

func (m *PrometheusMetrics) DirectiveApplied(directive, phase string) {
	m.directives.WithLabelValues(directive, phase).Inc()
}
