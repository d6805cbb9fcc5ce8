package inbox

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codewandler/inbox-go/core/fiber"
	"github.com/codewandler/inbox-go/core/scheduler"
)

// manualScheduler records triggers and fires them only when told to.
type manualScheduler struct {
	mu      sync.Mutex
	entries []*manualEntry
}

type manualEntry struct {
	delay     time.Duration
	fiber     fiber.Fiber
	op        func()
	cancelled atomic.Bool
}

func (e *manualEntry) Cancel() { e.cancelled.Store(true) }

func (s *manualScheduler) Schedule(delay time.Duration, f fiber.Fiber, op func()) scheduler.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &manualEntry{delay: delay, fiber: f, op: op}
	s.entries = append(s.entries, e)
	return e
}

func (s *manualScheduler) entry(t *testing.T, i int) *manualEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	require.Greater(t, len(s.entries), i)
	return s.entries[i]
}

// fire behaves like a timer: cancelled entries do not fire.
func (s *manualScheduler) fire(t *testing.T, i int) {
	e := s.entry(t, i)
	if e.cancelled.Load() {
		return
	}
	e.fiber.Add(e.op)
}

// fireAnyway submits the op even if it was cancelled, as if the timer fired
// just before Cancel was called.
func (s *manualScheduler) fireAnyway(t *testing.T, i int) {
	e := s.entry(t, i)
	e.fiber.Add(e.op)
}

var _ scheduler.Scheduler = (*manualScheduler)(nil)

func newSyncInbox[T any](t *testing.T, opts ...Option) (*Inbox[T], *fiber.SyncFiber, *manualScheduler) {
	f := fiber.NewSyncFiber(fiber.Options{})
	s := &manualScheduler{}
	in := New[T](f, s, opts...)
	t.Cleanup(in.Dispose)
	return in, f, s
}

// blockFiber parks f until the returned func is called.
func blockFiber(f fiber.Fiber) (release func()) {
	ch := make(chan struct{})
	started := make(chan struct{})
	f.Add(func() {
		close(started)
		<-ch
	})
	<-started
	return func() { close(ch) }
}

func collect[T any](dst *[]T) func(T) {
	return func(msg T) { *dst = append(*dst, msg) }
}

func (s *manualScheduler) isCancelled(i int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return i < len(s.entries) && s.entries[i].cancelled.Load()
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{counts: make(map[string]int)}
}

func (m *countingMetrics) inc(key string) {
	m.mu.Lock()
	m.counts[key]++
	m.mu.Unlock()
}

func (m *countingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *countingMetrics) completed(s State) int { return m.get("completed/" + s.String()) }
func (m *countingMetrics) dropped() int          { return m.get("dropped") }

func (m *countingMetrics) MessageSent(string) { m.inc("sent") }
func (m *countingMetrics) MessageDelivered(_ string, buffered bool) {
	if buffered {
		m.inc("delivered/buffered")
		return
	}
	m.inc("delivered/live")
}
func (m *countingMetrics) MessageDropped(string)              { m.inc("dropped") }
func (m *countingMetrics) ReceiveCompleted(_ string, s State) { m.inc("completed/" + s.String()) }
func (m *countingMetrics) WaitingMessages(string, int)        {}
func (m *countingMetrics) PendingReceivers(string, int)       {}

var _ Metrics = (*countingMetrics)(nil)
