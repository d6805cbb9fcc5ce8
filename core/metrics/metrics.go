// Package metrics defines the small instrumentation surface used by the core
// packages. Backends (see adapters/prometheus) implement these interfaces; the
// core never imports a metrics library directly.
package metrics

// Counter only goes up.
type Counter interface {
	Inc()
	// Add increments by delta, which must not be negative.
	Add(delta float64)
}

// Gauge reports a value that can move in both directions, such as a queue
// depth.
type Gauge interface {
	Set(value float64)
	Inc()
	Dec()
	Add(delta float64)
}

// Histogram records observations into buckets.
type Histogram interface {
	Observe(value float64)
}

// Timer measures one operation. It starts when created and records the elapsed
// time on ObserveDuration:
//
//	defer m.UnitDuration(id).ObserveDuration()
type Timer interface {
	ObserveDuration()
}

// TimerFunc starts a new Timer.
type TimerFunc func() Timer
