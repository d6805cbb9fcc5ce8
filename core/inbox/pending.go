package inbox

import (
	"sync/atomic"
	"time"

	"github.com/codewandler/inbox-go/core/scheduler"
)

// State is the lifecycle state of a PendingReceive. Every state but
// StateRegistered is terminal.
type State int32

const (
	StateRegistered State = iota
	StateAccepted
	StateCancelled
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateRegistered:
		return "registered"
	case StateAccepted:
		return "accepted"
	case StateCancelled:
		return "cancelled"
	case StateTimedOut:
		return "timed_out"
	default:
		return "unknown"
	}
}

// PendingReceive is a receiver registered with an inbox that has not yet
// consumed a message.
type PendingReceive[T any] struct {
	owner     *box[T]
	consumer  SelectiveConsumer[T]
	onTimeout func()
	deadline  time.Time
	timeout   scheduler.Handle

	cancelRequested atomic.Bool

	// fiber owned
	state State
}

// State returns the current state. Fiber only.
func (p *PendingReceive[T]) State() State { return p.state }

// Deadline returns when the receive times out, if it has a timeout.
func (p *PendingReceive[T]) Deadline() (time.Time, bool) {
	return p.deadline, !p.deadline.IsZero()
}

// Cancel withdraws the receive. Safe from any goroutine and on a nil
// receiver; the effect happens on the inbox fiber. Cancelling a receive that
// already accepted a message or timed out does nothing.
func (p *PendingReceive[T]) Cancel() {
	if p == nil || !p.cancelRequested.CompareAndSwap(false, true) {
		return
	}
	p.owner.fiber.Add(p.cancel)
}

// accept offers msg. On acceptance the receiver is deregistered before the
// consumer is returned to the inbox for invocation.
func (p *PendingReceive[T]) accept(msg T) Consumer[T] {
	if p.state != StateRegistered {
		return nil
	}
	c := p.consumer(msg)
	if c == nil {
		return nil
	}
	p.finish(StateAccepted)
	return c
}

func (p *PendingReceive[T]) cancel() {
	if p.state != StateRegistered {
		return
	}
	p.finish(StateCancelled)
}

func (p *PendingReceive[T]) expire() {
	if p.state != StateRegistered {
		return
	}
	p.finish(StateTimedOut)
	if p.onTimeout != nil {
		p.onTimeout()
	}
}

func (p *PendingReceive[T]) finish(s State) {
	p.state = s
	if p.timeout != nil {
		p.timeout.Cancel()
	}
	p.owner.removeReceiver(p)
}
