package nats

import (
	"sync"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/inbox"
	"github.com/codewandler/inbox-go/core/scheduler"
)

type order struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

type recorder[T any] struct {
	mu   sync.Mutex
	msgs []T
}

func (r *recorder[T]) Send(msg T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder[T]) all() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.msgs...)
}

func TestBridge_Handle(t *testing.T) {
	rec := &recorder[order]{}
	b := newBridge(BridgeConfig[order]{Subject: "orders", Target: rec})

	b.handle(&natsgo.Msg{Subject: "orders", Data: []byte(`{"id":"a","qty":1}`)})
	b.handle(&natsgo.Msg{Subject: "orders", Data: []byte(`not json`)})
	b.handle(&natsgo.Msg{Subject: "orders", Data: []byte(`{"id":"b","qty":2}`)})

	require.Equal(t, []order{{ID: "a", Qty: 1}, {ID: "b", Qty: 2}}, rec.all())
	require.Equal(t, uint64(2), b.Received())
	require.Equal(t, uint64(1), b.DecodeErrors())
	require.NoError(t, b.Close())
}

func TestNewBridge_Config(t *testing.T) {
	_, err := NewBridge(BridgeConfig[order]{Subject: "orders", Target: &recorder[order]{}})
	require.ErrorIs(t, err, ErrNoConnection)

	var opened, closed int
	connect := fakeConnector(&opened, &closed)

	_, err = NewBridge(BridgeConfig[order]{Connect: connect, Target: &recorder[order]{}})
	require.Error(t, err)

	_, err = NewBridge(BridgeConfig[order]{Connect: connect, Subject: "orders"})
	require.Error(t, err)
	require.Equal(t, 0, opened)
}

func TestBridge_IntoInbox(t *testing.T) {
	connect := NewTestContainer(t, testing.Short())

	f := fiber.NewThreadFiber(fiber.Options{Context: t.Context()})
	t.Cleanup(f.Stop)
	s := scheduler.New(scheduler.Options{})
	t.Cleanup(s.Stop)
	in := inbox.New[order](f, s)
	t.Cleanup(in.Dispose)

	b, err := NewBridge(BridgeConfig[order]{Connect: connect, Subject: "orders", Target: in})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	pub, err := NewPublisher[order](connect, "orders", nil)
	require.NoError(t, err)
	t.Cleanup(pub.Close)

	for i := 1; i <= 3; i++ {
		require.NoError(t, pub.Publish(order{ID: "o", Qty: i}))
	}
	require.NoError(t, pub.Flush(t.Context()))

	got := make(chan order, 3)
	require.NoError(t, fiber.Do(t.Context(), f, func() error {
		var next func()
		next = func() {
			in.Receive(inbox.When(func(o order) bool { return o.Qty > 1 }, func(o order) {
				got <- o
				next()
			}))
		}
		next()
		return nil
	}))

	for _, want := range []int{2, 3} {
		select {
		case o := <-got:
			require.Equal(t, want, o.Qty)
		case <-time.After(5 * time.Second):
			t.Fatalf("order %d not received", want)
		}
	}
}
