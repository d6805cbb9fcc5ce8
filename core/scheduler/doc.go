// Package scheduler triggers units of work on a fiber after a delay.
//
// The callback handed to [Scheduler.Schedule] never runs on a timer
// goroutine. When the delay elapses the scheduler adds it to the target
// fiber, so it is serialized with every other unit of that fiber.
//
// The returned [Handle] cancels the trigger. Cancel is idempotent and safe
// from any goroutine. If the trigger already fired and the unit is still
// queued on the fiber, the unit notices the cancellation and does nothing.
//
// [TimerScheduler] takes its time from a [clock.Clock], so tests can drive
// timeouts deterministically with clock.NewMock:
//
//	clk := clock.NewMock()
//	s := scheduler.New(scheduler.Options{Clock: clk})
//	s.Schedule(time.Second, f, func() { ... })
//	clk.Add(time.Second) // fires
//
// [clock.Clock]: https://pkg.go.dev/github.com/benbjohnson/clock#Clock
package scheduler
