package fiber

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ThreadFiber runs its units on one dedicated goroutine.
//
// The queue is unbounded so Add never blocks the caller. Units added after
// Stop are dropped.
type ThreadFiber struct {
	id      string
	ctx     context.Context
	log     *slog.Logger
	onPanic OnPanic
	metrics Metrics

	mu      sync.Mutex
	queue   []func()
	stopped bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	executing atomic.Bool
}

// NewThreadFiber creates a fiber and starts its goroutine.
func NewThreadFiber(opt Options) *ThreadFiber {
	opt = opt.withDefaults()
	f := &ThreadFiber{
		id:      opt.ID,
		ctx:     opt.Context,
		log:     opt.Logger,
		onPanic: opt.OnPanic,
		metrics: opt.Metrics,
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go f.loop()
	return f
}

func (f *ThreadFiber) ID() string { return f.id }

// Add enqueues op. It never blocks.
func (f *ThreadFiber) Add(op func()) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		f.log.Debug("fiber stopped, unit dropped")
		return
	}
	f.queue = append(f.queue, op)
	depth := len(f.queue)
	f.mu.Unlock()

	f.metrics.QueueDepth(f.id, depth)

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Executing reports whether a unit is running on the fiber right now.
func (f *ThreadFiber) Executing() bool { return f.executing.Load() }

// Stop stops accepting units. Units already queued still run; Done is closed
// afterwards. Stop does not wait, so it is safe to call from a unit.
func (f *ThreadFiber) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.stopped = true
	close(f.stop)
}

// Done is closed once the fiber has stopped and drained its queue.
func (f *ThreadFiber) Done() <-chan struct{} { return f.done }

func (f *ThreadFiber) loop() {
	defer close(f.done)

	for {
		f.mu.Lock()
		batch := f.queue
		f.queue = nil
		stopped := f.stopped
		f.mu.Unlock()

		if len(batch) > 0 {
			f.metrics.QueueDepth(f.id, 0)
			for i, op := range batch {
				batch[i] = nil
				f.run(op)
			}
			continue
		}

		if stopped {
			return
		}

		select {
		case <-f.wake:
		case <-f.stop:
		case <-f.ctx.Done():
			f.Stop()
		}
	}
}

func (f *ThreadFiber) run(op func()) {
	f.executing.Store(true)
	defer f.executing.Store(false)
	defer f.metrics.UnitDuration(f.id).ObserveDuration()
	defer func() {
		if r := recover(); r != nil {
			f.metrics.UnitPanicked(f.id)
			f.onPanic(r, debug.Stack())
		}
	}()
	op()
}

var (
	_ Fiber     = (*ThreadFiber)(nil)
	_ Affine    = (*ThreadFiber)(nil)
	_ Stoppable = (*ThreadFiber)(nil)
)
