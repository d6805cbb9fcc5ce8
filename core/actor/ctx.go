package actor

import (
	"log/slog"
	"time"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
)

// Context is handed to the actor body. Its receive methods must only be used
// from the body or from consumers, which all run on the actor's fiber.
type Context[T any] struct {
	actor *Actor[T]
}

func (c *Context[T]) Self() *Actor[T]        { return c.actor }
func (c *Context[T]) Log() *slog.Logger      { return c.actor.log }
func (c *Context[T]) Fiber() fiber.Fiber     { return c.actor.fiber }
func (c *Context[T]) Inbox() *inbox.Inbox[T] { return c.actor.inbox }

func (c *Context[T]) Receive(sc inbox.SelectiveConsumer[T]) *inbox.PendingReceive[T] {
	return c.actor.inbox.Receive(sc)
}

func (c *Context[T]) ReceiveWithTimeout(sc inbox.SelectiveConsumer[T], timeout time.Duration, onTimeout func()) *inbox.PendingReceive[T] {
	return c.actor.inbox.ReceiveWithTimeout(sc, timeout, onTimeout)
}

// Loop keeps sc registered: after each message it consumes, it is registered
// again. The loop ends when the inbox is disposed or a consumer panics.
func (c *Context[T]) Loop(sc inbox.SelectiveConsumer[T]) {
	in := c.actor.inbox
	receiving := false

	var next func()
	wrapped := func(msg T) inbox.Consumer[T] {
		h := sc(msg)
		if h == nil {
			return nil
		}
		return func(msg T) {
			h(msg)
			// buffered matches are picked up by the loop in next
			if !receiving {
				next()
			}
		}
	}
	next = func() {
		for {
			receiving = true
			p := in.Receive(wrapped)
			receiving = false
			if p != nil {
				return
			}
		}
	}
	next()
}
