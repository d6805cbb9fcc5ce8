package scheduler

// Metrics instruments a TimerScheduler. Implementations must be safe for
// concurrent use.
type Metrics interface {
	Scheduled(schedulerID string)
	Fired(schedulerID string)
	Cancelled(schedulerID string)
	Pending(schedulerID string, n int)
}

type nopMetrics struct{}

func (nopMetrics) Scheduled(string)    {}
func (nopMetrics) Fired(string)        {}
func (nopMetrics) Cancelled(string)    {}
func (nopMetrics) Pending(string, int) {}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return nopMetrics{} }
