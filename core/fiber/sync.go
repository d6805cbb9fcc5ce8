package fiber

import (
	"log/slog"
	"runtime/debug"
	"sync"
)

// SyncFiber runs units on the goroutine calling Add.
//
// If a unit is already running (on any goroutine), Add queues op and returns;
// the goroutine running the current unit drains the queue in FIFO order
// before returning from its own Add. Units therefore never overlap, and a
// unit that adds another unit sees it run after itself, not nested inside it.
type SyncFiber struct {
	id      string
	log     *slog.Logger
	onPanic OnPanic
	metrics Metrics

	mu       sync.Mutex
	queue    []func()
	draining bool
	stopped  bool
	done     chan struct{}
}

func NewSyncFiber(opt Options) *SyncFiber {
	opt = opt.withDefaults()
	return &SyncFiber{
		id:      opt.ID,
		log:     opt.Logger,
		onPanic: opt.OnPanic,
		metrics: opt.Metrics,
		done:    make(chan struct{}),
	}
}

func (f *SyncFiber) ID() string { return f.id }

func (f *SyncFiber) Add(op func()) {
	f.mu.Lock()
	if f.stopped {
		f.mu.Unlock()
		f.log.Debug("fiber stopped, unit dropped")
		return
	}
	f.queue = append(f.queue, op)
	if f.draining {
		depth := len(f.queue)
		f.mu.Unlock()
		f.metrics.QueueDepth(f.id, depth)
		return
	}
	f.draining = true
	f.mu.Unlock()

	f.drain()
}

// Executing reports whether some goroutine is currently draining the fiber.
func (f *SyncFiber) Executing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draining
}

// Stop drops every unit added afterwards. Units already queued still run.
// Idempotent.
func (f *SyncFiber) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopped {
		return
	}
	f.stopped = true
	if !f.draining {
		close(f.done)
	}
}

// Done is closed once the fiber has stopped and its queue is drained.
func (f *SyncFiber) Done() <-chan struct{} { return f.done }

func (f *SyncFiber) drain() {
	for {
		f.mu.Lock()
		if len(f.queue) == 0 {
			f.draining = false
			if f.stopped {
				close(f.done)
			}
			f.mu.Unlock()
			return
		}
		op := f.queue[0]
		f.queue[0] = nil
		f.queue = f.queue[1:]
		f.mu.Unlock()

		f.run(op)
	}
}

func (f *SyncFiber) run(op func()) {
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
	_ Fiber     = (*SyncFiber)(nil)
	_ Affine    = (*SyncFiber)(nil)
	_ Stoppable = (*SyncFiber)(nil)
)
