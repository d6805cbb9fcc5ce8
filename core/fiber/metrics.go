package fiber

import "github.com/codewandler/inbox-go/core/metrics"

// Metrics instruments fibers. Implementations must be safe for concurrent use.
type Metrics interface {
	QueueDepth(fiberID string, depth int)
	UnitDuration(fiberID string) metrics.Timer
	UnitPanicked(fiberID string)
}

type nopMetrics struct{}

func (nopMetrics) QueueDepth(string, int)            {}
func (nopMetrics) UnitDuration(string) metrics.Timer { return metrics.NopTimer() }
func (nopMetrics) UnitPanicked(string)               {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
