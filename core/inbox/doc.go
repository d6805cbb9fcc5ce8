// Package inbox provides a mailbox with selective, timeout-capable receive.
//
// An [Inbox] buffers messages of one type for one logical channel and keeps
// a registry of pending receivers. It is bound to a single [fiber.Fiber] and
// a [scheduler.Scheduler] for its whole life, and every piece of its state is
// only ever touched by units of work running on that fiber. That is what
// makes delivery exactly-once and resolves the race between a message
// arriving and a receive timing out: both are units on the same fiber, the
// one that runs first wins, the other finds the receiver gone.
//
// # Sending
//
// [Inbox.Send] may be called from any goroutine. It only adds a delivery unit
// to the fiber and returns. On the fiber, the message is offered to the
// pending receivers oldest first; the first one that accepts consumes it. If
// none accepts, the message is buffered.
//
// # Receiving
//
// [Inbox.Receive] and [Inbox.ReceiveWithTimeout] must be called from a unit
// running on the inbox's fiber. The buffered messages are offered to the
// consumer oldest first; on a match the handler runs right away and Receive
// returns nil. Otherwise a [PendingReceive] is registered and returned.
//
//	f.Add(func() {
//	    in.ReceiveWithTimeout(
//	        inbox.OfType[Msg, Pong](func(p Pong) { ... }),
//	        time.Second,
//	        func() { log.Println("no pong") },
//	    )
//	})
//
// A [SelectiveConsumer] looks at a candidate message and either returns the
// [Consumer] that will handle it, or nil to leave it for someone else. The
// returned Consumer is invoked exactly once.
//
// # Disposal
//
// [Inbox.Dispose] cancels every pending receive, drops the buffered messages
// and makes later sends no-ops. If an inbox becomes unreachable without being
// disposed, a runtime cleanup disposes it through its fiber so pending
// timeouts do not linger; do not rely on its timing.
package inbox
