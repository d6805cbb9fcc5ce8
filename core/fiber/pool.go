package fiber

import (
	"fmt"
	"runtime"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/codewandler/inbox-go/internal/hrw"
)

type PoolOptions struct {
	Options
	// Size is the number of fibers. Defaults to GOMAXPROCS.
	Size int
	// Seed perturbs the key to fiber assignment.
	Seed string
}

// Pool is a fixed set of ThreadFibers. Work for one key is always routed to
// the same fiber, so per-key state can live on that fiber without locks while
// different keys proceed in parallel.
type Pool struct {
	fibers []*ThreadFiber
	ids    []string
	seed   string
	done   chan struct{}
}

func NewPool(opt PoolOptions) *Pool {
	if opt.Size <= 0 {
		opt.Size = runtime.GOMAXPROCS(0)
	}
	prefix := opt.ID
	if prefix == "" {
		prefix = "pool-" + gonanoid.Must(6)
	}

	p := &Pool{
		fibers: make([]*ThreadFiber, opt.Size),
		ids:    make([]string, opt.Size),
		seed:   opt.Seed,
		done:   make(chan struct{}),
	}
	for i := range p.fibers {
		fo := opt.Options
		fo.ID = fmt.Sprintf("%s-%d", prefix, i)
		p.fibers[i] = NewThreadFiber(fo)
		p.ids[i] = fo.ID
	}

	go func() {
		defer close(p.done)
		for _, f := range p.fibers {
			<-f.Done()
		}
	}()

	return p
}

// For returns the fiber responsible for key.
func (p *Pool) For(key string) Fiber {
	idx, _ := hrw.Index(key, p.ids, p.seed)
	return p.fibers[idx]
}

func (p *Pool) Size() int { return len(p.fibers) }

// Stop stops every fiber in the pool; Done is closed when all have drained.
func (p *Pool) Stop() {
	for _, f := range p.fibers {
		f.Stop()
	}
}

func (p *Pool) Done() <-chan struct{} { return p.done }
