// Package fiber provides serialized execution contexts.
//
// A [Fiber] accepts units of work (zero-argument funcs) and runs them one at a
// time, in the order they were added. Code that only ever touches some state
// from inside units of one fiber needs no lock for that state: the fiber is
// the unit of serialization.
//
// # Implementations
//
//   - [ThreadFiber] drains an unbounded queue on one dedicated goroutine.
//     Add never blocks.
//   - [SyncFiber] runs units inline on the goroutine that calls Add, queueing
//     units added while another unit is running. Handy in tests.
//   - [Pool] is a fixed set of ThreadFibers; [Pool.For] maps a key to the
//     same fiber every time.
//
// # Ordering
//
// Both reference fibers execute units in strict FIFO order of their Add calls
// as observed by the fiber's queue. Two goroutines calling Add concurrently
// race for queue position; once queued, the order is fixed.
//
// # Panics
//
// A panicking unit is recovered and reported through [Options.OnPanic]; the
// fiber keeps running the following units.
//
// # Waiting for a result
//
// [Do] adds a unit and blocks until it has run:
//
//	err := fiber.Do(ctx, f, func() error {
//	    // runs on f
//	    return nil
//	})
//
// Never call Do from a unit running on the same fiber; it would wait for
// itself.
package fiber
