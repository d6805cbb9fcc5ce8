// Package actor runs message-driven actors on top of an inbox.
//
// An actor owns one [inbox.Inbox] bound to a fiber. Its body runs as the
// first unit on that fiber and decides what to receive next; every later
// step runs as a consumer invoked by the inbox, so the actor's state needs
// no locking as long as it is only touched from the body and its consumers.
//
//	a := actor.New(actor.Options{}, func(ctx *actor.Context[Msg]) {
//	    count := 0
//	    ctx.Loop(inbox.OfType[Msg](func(Inc) { count++ }))
//	    ctx.Loop(inbox.OfType[Msg](func(q Get) { q.Reply <- count }))
//	})
//	_ = a.Send(Inc{})
//
// Receives with a timeout let an actor wait for a specific message without
// blocking a goroutine:
//
//	ctx.ReceiveWithTimeout(inbox.OfType[Msg](onPong), time.Second, onNoPong)
//
// [Actor.Stop] disposes the inbox (cancelling all pending receives) and stops
// the fiber and scheduler if the actor created them.
package actor
