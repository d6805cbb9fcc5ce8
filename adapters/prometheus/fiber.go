package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/metrics"
)

type fiberMetrics struct {
	queueDepth   *prometheus.GaugeVec
	unitDuration *prometheus.HistogramVec
	unitPanics   *prometheus.CounterVec
}

// NewFiberMetrics creates a Prometheus implementation of fiber.Metrics.
func NewFiberMetrics(reg prometheus.Registerer) fiber.Metrics {
	m := &fiberMetrics{
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inbox_fiber_queue_depth",
			Help: "Units waiting to run on the fiber",
		}, []string{"fiber_id"}),

		unitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inbox_fiber_unit_duration_seconds",
			Help:    "Time spent running one unit of work",
			Buckets: defaultBuckets,
		}, []string{"fiber_id"}),

		unitPanics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_fiber_unit_panics_total",
			Help: "Units that panicked",
		}, []string{"fiber_id"}),
	}

	reg.MustRegister(m.queueDepth, m.unitDuration, m.unitPanics)

	return m
}

func (m *fiberMetrics) QueueDepth(fiberID string, depth int) {
	m.queueDepth.WithLabelValues(fiberID).Set(float64(depth))
}

func (m *fiberMetrics) UnitDuration(fiberID string) metrics.Timer {
	return newTimer(m.unitDuration.WithLabelValues(fiberID))
}

func (m *fiberMetrics) UnitPanicked(fiberID string) {
	m.unitPanics.WithLabelValues(fiberID).Inc()
}

var _ fiber.Metrics = (*fiberMetrics)(nil)
