package actor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/benbjohnson/clock"
	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
	"github.com/codewandler/inbox-go/core/scheduler"
)

var ErrActorStopped = errors.New("actor stopped")

type Options struct {
	// ID names the actor; it is also used as the inbox ID. Defaults to
	// "actor-<random>".
	ID string
	// Context stops the actor when done.
	Context context.Context
	Logger  *slog.Logger
	// Fiber runs the actor. If nil, the actor creates and owns a ThreadFiber.
	Fiber fiber.Fiber
	// Scheduler handles receive timeouts. If nil, the actor creates and owns
	// a TimerScheduler.
	Scheduler scheduler.Scheduler
	// Clock drives the owned scheduler and receive deadlines. When Scheduler
	// is supplied, deadlines follow its clock unless Clock is set.
	Clock clock.Clock
	// OnPanic is used for the owned fiber.
	OnPanic      fiber.OnPanic
	FiberMetrics fiber.Metrics
	InboxMetrics inbox.Metrics
}

type Actor[T any] struct {
	id    string
	log   *slog.Logger
	fiber fiber.Fiber
	inbox *inbox.Inbox[T]

	ownFiber *fiber.ThreadFiber
	ownSched *scheduler.TimerScheduler

	mu        sync.Mutex
	stopped   bool
	stopCtx   func() bool
	done      chan struct{}
	closeDone sync.Once
}

// New starts an actor. body runs as the first unit on the actor's fiber.
func New[T any](opt Options, body func(ctx *Context[T])) *Actor[T] {
	if opt.ID == "" {
		opt.ID = "actor-" + gonanoid.Must(6)
	}
	if opt.Context == nil {
		opt.Context = context.Background()
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	log := opt.Logger.With(slog.String("actor", opt.ID))

	a := &Actor[T]{
		id:   opt.ID,
		log:  log,
		done: make(chan struct{}),
	}

	a.fiber = opt.Fiber
	if a.fiber == nil {
		a.ownFiber = fiber.NewThreadFiber(fiber.Options{
			ID:      opt.ID,
			Logger:  opt.Logger,
			OnPanic: opt.OnPanic,
			Metrics: opt.FiberMetrics,
		})
		a.fiber = a.ownFiber
	}

	sched := opt.Scheduler
	if sched == nil {
		if opt.Clock == nil {
			opt.Clock = clock.New()
		}
		a.ownSched = scheduler.New(scheduler.Options{
			ID:     opt.ID,
			Clock:  opt.Clock,
			Logger: opt.Logger,
		})
		sched = a.ownSched
	}

	inboxOpts := []inbox.Option{
		inbox.WithID(opt.ID),
		inbox.WithLogger(opt.Logger),
		inbox.WithMetrics(opt.InboxMetrics),
	}
	if opt.Clock != nil {
		inboxOpts = append(inboxOpts, inbox.WithClock(opt.Clock))
	}
	a.inbox = inbox.New[T](a.fiber, sched, inboxOpts...)

	ctx := &Context[T]{actor: a}
	a.fiber.Add(func() { body(ctx) })

	a.mu.Lock()
	a.stopCtx = context.AfterFunc(opt.Context, a.Stop)
	a.mu.Unlock()

	return a
}

func (a *Actor[T]) ID() string { return a.id }

// Send delivers msg to the actor's inbox.
func (a *Actor[T]) Send(msg T) error {
	if a.isStopped() {
		return ErrActorStopped
	}
	a.inbox.Send(msg)
	return nil
}

// Stop disposes the inbox and stops the fiber and scheduler the actor owns.
// It does not wait; use Done for that. Idempotent and safe from the actor's
// own consumers.
func (a *Actor[T]) Stop() {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}
	a.stopped = true
	stopCtx := a.stopCtx
	a.mu.Unlock()

	if stopCtx != nil {
		stopCtx()
	}
	a.inbox.Dispose()
	if a.ownSched != nil {
		a.ownSched.Stop()
	}

	if a.ownFiber != nil {
		a.ownFiber.Stop()
		go func() {
			<-a.ownFiber.Done()
			a.markDone()
		}()
	} else {
		// a stopped fiber drops the unit, its Done covers that case
		a.fiber.Add(a.markDone)
		if s, ok := a.fiber.(fiber.Stoppable); ok {
			go func() {
				select {
				case <-s.Done():
					a.markDone()
				case <-a.done:
				}
			}()
		}
	}
	a.log.Debug("actor stopping")
}

func (a *Actor[T]) markDone() {
	a.closeDone.Do(func() { close(a.done) })
}

// Done is closed once the actor has stopped.
func (a *Actor[T]) Done() <-chan struct{} { return a.done }

func (a *Actor[T]) isStopped() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopped
}

// Request sends the message built by mk and waits for the actor to call
// reply. Only the first reply counts.
func Request[T, R any](ctx context.Context, a *Actor[T], mk func(reply func(R)) T) (R, error) {
	ch := make(chan R, 1)
	msg := mk(func(r R) {
		select {
		case ch <- r:
		default:
		}
	})

	var zero R
	if err := a.Send(msg); err != nil {
		return zero, err
	}

	select {
	case r := <-ch:
		return r, nil
	case <-a.Done():
		return zero, ErrActorStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
