package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/inbox-go/core/inbox"
)

type inboxMetrics struct {
	sent      *prometheus.CounterVec
	delivered *prometheus.CounterVec
	dropped   *prometheus.CounterVec
	receives  *prometheus.CounterVec
	waiting   *prometheus.GaugeVec
	receivers *prometheus.GaugeVec
}

// NewInboxMetrics creates a Prometheus implementation of inbox.Metrics.
func NewInboxMetrics(reg prometheus.Registerer) inbox.Metrics {
	m := &inboxMetrics{
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_messages_sent_total",
			Help: "Messages sent to the inbox",
		}, []string{"inbox_id"}),

		delivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_messages_delivered_total",
			Help: "Messages handed to a consumer",
		}, []string{"inbox_id", "buffered"}),

		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_messages_dropped_total",
			Help: "Messages sent after the inbox was disposed",
		}, []string{"inbox_id"}),

		receives: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inbox_receives_completed_total",
			Help: "Pending receives that reached a final state",
		}, []string{"inbox_id", "state"}),

		waiting: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inbox_waiting_messages",
			Help: "Buffered messages no receiver has accepted yet",
		}, []string{"inbox_id"}),

		receivers: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "inbox_pending_receivers",
			Help: "Registered receives waiting for a message",
		}, []string{"inbox_id"}),
	}

	reg.MustRegister(
		m.sent,
		m.delivered,
		m.dropped,
		m.receives,
		m.waiting,
		m.receivers,
	)

	return m
}

func (m *inboxMetrics) MessageSent(inboxID string) {
	m.sent.WithLabelValues(inboxID).Inc()
}

func (m *inboxMetrics) MessageDelivered(inboxID string, buffered bool) {
	m.delivered.WithLabelValues(inboxID, boolToStr(buffered)).Inc()
}

func (m *inboxMetrics) MessageDropped(inboxID string) {
	m.dropped.WithLabelValues(inboxID).Inc()
}

func (m *inboxMetrics) ReceiveCompleted(inboxID string, state inbox.State) {
	m.receives.WithLabelValues(inboxID, state.String()).Inc()
}

func (m *inboxMetrics) WaitingMessages(inboxID string, n int) {
	m.waiting.WithLabelValues(inboxID).Set(float64(n))
}

func (m *inboxMetrics) PendingReceivers(inboxID string, n int) {
	m.receivers.WithLabelValues(inboxID).Set(float64(n))
}

var _ inbox.Metrics = (*inboxMetrics)(nil)
