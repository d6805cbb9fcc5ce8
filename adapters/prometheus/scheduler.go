package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/inbox-go/core/scheduler"
)

type schedulerMetrics struct {
	scheduled *prometheus.CounterVec
	fired     *prometheus.CounterVec
	cancelled *prometheus.CounterVec
	pending   *prometheus.GaugeVec
}

// NewSchedulerMetrics creates a Prometheus implementation of scheduler.Metrics.
func NewSchedulerMetrics(reg prometheus.Registerer) scheduler.Metrics {
	m := &schedulerMetrics{
		scheduled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_scheduler_scheduled_total",
			Help: "Triggers scheduled",
		}, []string{"scheduler_id"}),

		fired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_scheduler_fired_total",
			Help: "Triggers that fired and were handed to a fiber",
		}, []string{"scheduler_id"}),

		cancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_scheduler_cancelled_total",
			Help: "Triggers cancelled before firing",
		}, []string{"scheduler_id"}),

		pending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inbox_scheduler_pending",
			Help: "Triggers armed and not yet fired or cancelled",
		}, []string{"scheduler_id"}),
	}

	reg.MustRegister(m.scheduled, m.fired, m.cancelled, m.pending)

	return m
}

func (m *schedulerMetrics) Scheduled(id string) { m.scheduled.WithLabelValues(id).Inc() }
func (m *schedulerMetrics) Fired(id string)     { m.fired.WithLabelValues(id).Inc() }
func (m *schedulerMetrics) Cancelled(id string) { m.cancelled.WithLabelValues(id).Inc() }

func (m *schedulerMetrics) Pending(id string, n int) {
	m.pending.WithLabelValues(id).Set(float64(n))
}

var _ scheduler.Metrics = (*schedulerMetrics)(nil)
