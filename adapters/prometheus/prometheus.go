// Package prometheus provides Prometheus implementations of the metrics
// interfaces of the fiber, scheduler and inbox packages.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
	"github.com/codewandler/inbox-go/core/metrics"
	"github.com/codewandler/inbox-go/core/scheduler"
)

// timer wraps a Prometheus observer to implement metrics.Timer.
type timer struct {
	h     prometheus.Observer
	start time.Time
}

func newTimer(h prometheus.Observer) metrics.Timer {
	return &timer{h: h, start: time.Now()}
}

func (t *timer) ObserveDuration() {
	t.h.Observe(time.Since(t.start).Seconds())
}

// Default histogram buckets for unit latencies (in seconds). Units are
// expected to be short, so the range starts lower than the client default.
var defaultBuckets = []float64{
	.00001, .000025, .00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1, .25, 1,
}

// AllMetrics bundles the Prometheus metrics of every package.
type AllMetrics struct {
	Fiber     fiber.Metrics
	Scheduler scheduler.Metrics
	Inbox     inbox.Metrics
}

// NewAllMetrics registers the metrics of every package on reg.
func NewAllMetrics(reg prometheus.Registerer) *AllMetrics {
	return &AllMetrics{
		Fiber:     NewFiberMetrics(reg),
		Scheduler: NewSchedulerMetrics(reg),
		Inbox:     NewInboxMetrics(reg),
	}
}

func boolToStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
