package inbox

import (
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/scheduler"
)

// Inbox is a mailbox for messages of type T bound to one fiber.
type Inbox[T any] struct {
	b       *box[T]
	cleanup runtime.Cleanup
}

// box holds the inbox state. It is kept apart from Inbox so the runtime
// cleanup can reach it after the Inbox itself became unreachable.
type box[T any] struct {
	id       string
	fiber    fiber.Fiber
	affine   fiber.Affine
	sched    scheduler.Scheduler
	clock    clock.Clock
	log      *slog.Logger
	metrics  Metrics
	affinity bool

	disposeRequested atomic.Bool

	// fiber owned
	waiting   []T
	receivers []*PendingReceive[T]
	disposed  bool
}

// New creates an inbox bound to f, scheduling receive timeouts with s.
// Receive deadlines are computed on the clock given by WithClock, else on
// the clock of s if it implements scheduler.Clocked, else on the wall clock.
func New[T any](f fiber.Fiber, s scheduler.Scheduler, opts ...Option) *Inbox[T] {
	o := options{affinity: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.id == "" {
		o.id = "inbox-" + gonanoid.Must(6)
	}
	if o.log == nil {
		o.log = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = NopMetrics()
	}
	if o.clock == nil {
		if c, ok := s.(scheduler.Clocked); ok {
			o.clock = c.Clock()
		} else {
			o.clock = clock.New()
		}
	}

	b := &box[T]{
		id:       o.id,
		fiber:    f,
		sched:    s,
		clock:    o.clock,
		log:      o.log.With(slog.String("inbox", o.id)),
		metrics:  o.metrics,
		affinity: o.affinity,
	}
	if a, ok := f.(fiber.Affine); ok {
		b.affine = a
	}

	in := &Inbox[T]{b: b}
	in.cleanup = runtime.AddCleanup(in, func(b *box[T]) {
		if b.requestDispose() {
			b.log.Warn("inbox garbage collected without Dispose")
		}
	}, b)
	return in
}

func (in *Inbox[T]) ID() string { return in.b.id }

// Send offers msg to the pending receivers, or buffers it. Safe from any
// goroutine; delivery happens asynchronously on the fiber. Sending to a
// disposed inbox drops the message.
func (in *Inbox[T]) Send(msg T) {
	b := in.b
	b.metrics.MessageSent(b.id)
	b.fiber.Add(func() { b.handleSend(msg) })
}

// Receive consumes the oldest buffered message c accepts and returns nil, or
// registers c as a pending receiver and returns its handle.
//
// Must be called from a unit running on the inbox's fiber.
func (in *Inbox[T]) Receive(c SelectiveConsumer[T]) *PendingReceive[T] {
	return in.b.receive(c, 0, nil, false)
}

// ReceiveWithTimeout is like Receive, but a pending receiver that has not
// accepted a message after timeout is removed and onTimeout (if non-nil) is
// called on the fiber.
//
// Must be called from a unit running on the inbox's fiber.
func (in *Inbox[T]) ReceiveWithTimeout(c SelectiveConsumer[T], timeout time.Duration, onTimeout func()) *PendingReceive[T] {
	return in.b.receive(c, timeout, onTimeout, true)
}

// Waiting returns the number of buffered messages. Fiber only.
func (in *Inbox[T]) Waiting() int { return len(in.b.waiting) }

// Receivers returns the number of pending receivers. Fiber only.
func (in *Inbox[T]) Receivers() int { return len(in.b.receivers) }

// Disposed reports whether disposal has taken effect. Fiber only.
func (in *Inbox[T]) Disposed() bool { return in.b.disposed }

// Dispose cancels all pending receivers and drops the buffered messages.
// Later sends are dropped. Safe from any goroutine and idempotent; the
// effect happens on the fiber, after the units already queued there.
func (in *Inbox[T]) Dispose() {
	in.cleanup.Stop()
	in.b.requestDispose()
}

func (b *box[T]) requestDispose() bool {
	if !b.disposeRequested.CompareAndSwap(false, true) {
		return false
	}
	b.fiber.Add(b.dispose)
	return true
}

func (b *box[T]) dispose() {
	if b.disposed {
		return
	}

	receivers := slices.Clone(b.receivers)
	for _, p := range receivers {
		p.cancel()
	}

	dropped := len(b.waiting)
	clear(b.waiting)
	b.waiting = nil
	b.disposed = true

	b.metrics.WaitingMessages(b.id, 0)
	b.log.Debug("inbox disposed",
		slog.Int("cancelled_receivers", len(receivers)),
		slog.Int("dropped_messages", dropped),
	)
}

func (b *box[T]) handleSend(msg T) {
	if b.disposed {
		b.metrics.MessageDropped(b.id)
		b.log.Debug("inbox disposed, message dropped")
		return
	}

	for _, p := range b.receivers {
		c := p.accept(msg)
		if c == nil {
			continue
		}
		b.metrics.MessageDelivered(b.id, false)
		c(msg)
		return
	}

	b.waiting = append(b.waiting, msg)
	b.metrics.WaitingMessages(b.id, len(b.waiting))
}

func (b *box[T]) receive(c SelectiveConsumer[T], timeout time.Duration, onTimeout func(), withTimeout bool) *PendingReceive[T] {
	if b.affinity && b.affine != nil && !b.affine.Executing() {
		panic(fmt.Errorf("inbox %s: receive: %w", b.id, ErrNotOnFiber))
	}

	for i, msg := range b.waiting {
		h := c(msg)
		if h == nil {
			continue
		}
		// remove before handing out, a panicking handler must not leave the
		// message buffered
		b.waiting = slices.Delete(b.waiting, i, i+1)
		b.metrics.WaitingMessages(b.id, len(b.waiting))
		b.metrics.MessageDelivered(b.id, true)
		h(msg)
		return nil
	}

	p := &PendingReceive[T]{
		owner:     b,
		consumer:  c,
		onTimeout: onTimeout,
	}

	if b.disposed {
		p.state = StateCancelled
		b.log.Debug("inbox disposed, receive cancelled")
		return p
	}

	b.receivers = append(b.receivers, p)
	b.metrics.PendingReceivers(b.id, len(b.receivers))

	if withTimeout {
		p.deadline = b.clock.Now().Add(timeout)
		p.timeout = b.sched.Schedule(timeout, b.fiber, p.expire)
	}

	return p
}

func (b *box[T]) removeReceiver(p *PendingReceive[T]) {
	if i := slices.Index(b.receivers, p); i >= 0 {
		b.receivers = slices.Delete(b.receivers, i, i+1)
	}
	b.metrics.PendingReceivers(b.id, len(b.receivers))
	b.metrics.ReceiveCompleted(b.id, p.state)
}
