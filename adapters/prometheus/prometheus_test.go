package prometheus

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
	"github.com/codewandler/inbox-go/core/scheduler"
)

func gatherNames(t *testing.T, reg *prometheus.Registry) map[string]bool {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	return names
}

func TestNewFiberMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFiberMetrics(reg)
	require.NotNil(t, m)

	m.QueueDepth("f-1", 3)
	timer := m.UnitDuration("f-1")
	assert.NotNil(t, timer)
	timer.ObserveDuration()
	m.UnitPanicked("f-1")

	names := gatherNames(t, reg)
	assert.True(t, names["inbox_fiber_queue_depth"])
	assert.True(t, names["inbox_fiber_unit_duration_seconds"])
	assert.True(t, names["inbox_fiber_unit_panics_total"])
}

func TestNewSchedulerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSchedulerMetrics(reg).(*schedulerMetrics)

	m.Scheduled("s-1")
	m.Scheduled("s-1")
	m.Fired("s-1")
	m.Cancelled("s-1")
	m.Pending("s-1", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scheduled.WithLabelValues("s-1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fired.WithLabelValues("s-1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancelled.WithLabelValues("s-1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.pending.WithLabelValues("s-1")))
}

func TestNewInboxMetrics_WiredIntoInbox(t *testing.T) {
	reg := prometheus.NewRegistry()
	all := NewAllMetrics(reg)
	require.NotNil(t, all.Fiber)
	require.NotNil(t, all.Scheduler)
	require.NotNil(t, all.Inbox)

	f := fiber.NewSyncFiber(fiber.Options{ID: "f", Metrics: all.Fiber})
	s := scheduler.New(scheduler.Options{ID: "s", Metrics: all.Scheduler})
	t.Cleanup(s.Stop)
	in := inbox.New[int](f, s, inbox.WithID("in"), inbox.WithMetrics(all.Inbox))

	in.Send(1)
	in.Send(2)
	f.Add(func() {
		in.Receive(inbox.When(func(v int) bool { return v == 2 }, func(int) {}))
		in.Receive(inbox.When(func(v int) bool { return v == 3 }, func(int) {})).Cancel()
	})
	in.Dispose()
	in.Send(4)

	m := all.Inbox.(*inboxMetrics)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sent.WithLabelValues("in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.delivered.WithLabelValues("in", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped.WithLabelValues("in")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.receives.WithLabelValues("in", "cancelled")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.waiting.WithLabelValues("in")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.receivers.WithLabelValues("in")))

	names := gatherNames(t, reg)
	assert.True(t, names["inbox_fiber_unit_duration_seconds"])
	assert.True(t, names["inbox_messages_sent_total"])
}

func TestBoolToStr(t *testing.T) {
	assert.Equal(t, "true", boolToStr(true))
	assert.Equal(t, "false", boolToStr(false))
}
