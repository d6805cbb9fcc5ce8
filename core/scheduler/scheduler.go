package scheduler

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/inbox-go/core/fiber"
)

type (
	// Handle cancels a scheduled trigger.
	Handle interface {
		Cancel()
	}

	// Scheduler adds op to f once delay has elapsed, unless cancelled first.
	Scheduler interface {
		Schedule(delay time.Duration, f fiber.Fiber, op func()) Handle
	}

	// Clocked is implemented by schedulers that expose the clock their
	// delays are measured on.
	Clocked interface {
		Clock() clock.Clock
	}
)

type Options struct {
	// ID names the scheduler in logs and metrics. Defaults to "scheduler-<random>".
	ID      string
	Clock   clock.Clock
	Logger  *slog.Logger
	Metrics Metrics
}

// TimerScheduler implements Scheduler on top of clock timers.
type TimerScheduler struct {
	id      string
	clock   clock.Clock
	log     *slog.Logger
	metrics Metrics

	mu      sync.Mutex
	pending map[*scheduled]struct{}
	stopped bool
}

func New(opt Options) *TimerScheduler {
	if opt.ID == "" {
		opt.ID = "scheduler-" + gonanoid.Must(6)
	}
	if opt.Clock == nil {
		opt.Clock = clock.New()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	if opt.Metrics == nil {
		opt.Metrics = NopMetrics()
	}
	return &TimerScheduler{
		id:      opt.ID,
		clock:   opt.Clock,
		log:     opt.Logger.With(slog.String("scheduler", opt.ID)),
		metrics: opt.Metrics,
		pending: make(map[*scheduled]struct{}),
	}
}

func (s *TimerScheduler) Clock() clock.Clock { return s.clock }

// Schedule adds op to f after delay. A delay <= 0 adds it right away.
func (s *TimerScheduler) Schedule(delay time.Duration, f fiber.Fiber, op func()) Handle {
	return s.schedule(delay, 0, f, op)
}

// ScheduleEvery adds op to f after first and then every interval until the
// handle is cancelled or the scheduler stops. interval must be positive.
func (s *TimerScheduler) ScheduleEvery(first, interval time.Duration, f fiber.Fiber, op func()) Handle {
	if interval <= 0 {
		panic("scheduler: non-positive interval")
	}
	return s.schedule(first, interval, f, op)
}

// Pending returns the number of triggers that have neither fired nor been
// cancelled. Periodic triggers stay pending until cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels every pending trigger. Triggers scheduled afterwards come back
// already cancelled.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	all := make([]*scheduled, 0, len(s.pending))
	for h := range s.pending {
		all = append(all, h)
	}
	s.mu.Unlock()

	for _, h := range all {
		h.Cancel()
	}
	s.log.Debug("scheduler stopped", slog.Int("cancelled", len(all)))
}

func (s *TimerScheduler) schedule(delay, interval time.Duration, f fiber.Fiber, op func()) Handle {
	h := &scheduled{s: s, fiber: f, op: op, interval: interval}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		h.cancelled.Store(true)
		s.log.Debug("scheduler stopped, trigger discarded")
		return h
	}
	s.pending[h] = struct{}{}
	n := len(s.pending)
	s.mu.Unlock()

	s.metrics.Scheduled(s.id)
	s.metrics.Pending(s.id, n)

	if delay <= 0 {
		h.fire()
		return h
	}
	h.arm(delay)
	return h
}

// forget removes h from the pending set and reports whether it was there.
func (s *TimerScheduler) forget(h *scheduled) bool {
	s.mu.Lock()
	_, ok := s.pending[h]
	delete(s.pending, h)
	n := len(s.pending)
	s.mu.Unlock()
	if ok {
		s.metrics.Pending(s.id, n)
	}
	return ok
}

type scheduled struct {
	s        *TimerScheduler
	fiber    fiber.Fiber
	op       func()
	interval time.Duration

	cancelled atomic.Bool

	mu    sync.Mutex
	timer *clock.Timer
}

func (h *scheduled) arm(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancelled.Load() {
		return
	}
	h.timer = h.s.clock.AfterFunc(d, h.fire)
}

func (h *scheduled) fire() {
	if h.cancelled.Load() {
		return
	}
	if h.interval > 0 {
		h.arm(h.interval)
	} else {
		h.s.forget(h)
	}
	h.s.metrics.Fired(h.s.id)
	h.fiber.Add(func() {
		if h.cancelled.Load() {
			return
		}
		h.op()
	})
}

func (h *scheduled) Cancel() {
	if !h.cancelled.CompareAndSwap(false, true) {
		return
	}
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
	}
	h.mu.Unlock()
	if h.s.forget(h) {
		h.s.metrics.Cancelled(h.s.id)
	}
}

var (
	_ Scheduler = (*TimerScheduler)(nil)
	_ Clocked   = (*TimerScheduler)(nil)
)
