package integration

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/inbox-go/adapters/nats"
	"github.com/codewandler/inbox-go/core/actor"
	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
	"github.com/codewandler/inbox-go/core/scheduler"
)

type (
	myRequest struct {
		Tenant string `json:"tenant"`
		A      int    `json:"a"`
		B      int    `json:"b"`
	}
	getSum struct{ reply func(int) }
	ack    struct{ Seq int }
	resume struct{}
)

// tenants routes requests to one actor per tenant.
type tenants struct {
	pool  *fiber.Pool
	sched scheduler.Scheduler

	mu     sync.Mutex
	actors map[string]*actor.Actor[any]
}

func (ts *tenants) get(t *testing.T, tenant string) *actor.Actor[any] {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if a, ok := ts.actors[tenant]; ok {
		return a
	}
	a := actor.New(actor.Options{
		ID:        tenant,
		Context:   t.Context(),
		Fiber:     ts.pool.For(tenant),
		Scheduler: ts.sched,
	}, func(ctx *actor.Context[any]) {
		sum := 0
		ctx.Loop(inbox.OfType[any](func(r myRequest) { sum += r.A + r.B }))
		ctx.Loop(inbox.OfType[any](func(q getSum) { q.reply(sum) }))
	})
	ts.actors[tenant] = a
	return a
}

func TestIntegration_NatsToActors(t *testing.T) {
	connect := nats.NewTestContainer(t, testing.Short())

	pool := fiber.NewPool(fiber.PoolOptions{Size: 4})
	t.Cleanup(pool.Stop)
	sched := scheduler.New(scheduler.Options{})
	t.Cleanup(sched.Stop)

	ts := &tenants{pool: pool, sched: sched, actors: map[string]*actor.Actor[any]{}}
	target := senderFunc[myRequest](func(r myRequest) { _ = ts.get(t, r.Tenant).Send(r) })

	bridge, err := nats.NewBridge(nats.BridgeConfig[myRequest]{
		Connect: connect,
		Subject: "calc.requests",
		Target:  target,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bridge.Close() })

	pub, err := nats.NewPublisher[myRequest](connect, "calc.requests", nil)
	require.NoError(t, err)
	t.Cleanup(pub.Close)

	for i := 0; i < 100; i++ {
		tenant := []string{"tenant-1", "tenant-2"}[i%2]
		require.NoError(t, pub.Publish(myRequest{Tenant: tenant, A: i, B: 1}))
	}
	require.NoError(t, pub.Flush(t.Context()))
	require.Eventually(t, func() bool { return bridge.Received() == 100 }, 5*time.Second, 10*time.Millisecond)

	sum := func(tenant string) int {
		v, err := actor.Request(t.Context(), ts.get(t, tenant), func(reply func(int)) any {
			return getSum{reply: reply}
		})
		require.NoError(t, err)
		return v
	}
	// even i: 0+2+...+98 plus 50 ones, odd i: 1+3+...+99 plus 50 ones
	require.Equal(t, 2450+50, sum("tenant-1"))
	require.Equal(t, 2500+50, sum("tenant-2"))
}

func TestIntegration_LateAckIsBuffered(t *testing.T) {
	var timedOut atomic.Bool
	acked := make(chan []int, 1)

	a := actor.New(actor.Options{Context: t.Context()}, func(ctx *actor.Context[any]) {
		var got []int
		collect := inbox.OfType[any](func(m ack) {
			got = append(got, m.Seq)
			if len(got) == 2 {
				acked <- got
			}
		})

		ctx.ReceiveWithTimeout(collect, 20*time.Millisecond, func() {
			timedOut.Store(true)
			// acks sent from now on wait in the buffer until resume
			ctx.Receive(inbox.OfType[any](func(resume) { ctx.Loop(collect) }))
		})
	})
	t.Cleanup(a.Stop)

	require.Eventually(t, timedOut.Load, time.Second, time.Millisecond)
	require.NoError(t, a.Send(ack{Seq: 1}))
	require.NoError(t, a.Send(ack{Seq: 2}))
	require.NoError(t, a.Send(resume{}))

	select {
	case got := <-acked:
		require.Equal(t, []int{1, 2}, got)
	case <-time.After(2 * time.Second):
		t.Fatal("acks not received")
	}
}

type senderFunc[T any] func(T)

func (f senderFunc[T]) Send(msg T) { f(msg) }
