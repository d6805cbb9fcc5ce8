package fiber

import (
	"context"
	"fmt"
	"log/slog"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type (
	// Fiber executes units of work one at a time, in submission order.
	Fiber interface {
		Add(op func())
	}

	// Affine is implemented by fibers that can tell whether a unit of work is
	// currently running on them. Components that must only be used from
	// inside the fiber use it to fail fast.
	Affine interface {
		Executing() bool
	}

	// Stoppable is implemented by fibers that can stop. Done is closed once
	// the fiber drained its queue; units added afterwards never run.
	Stoppable interface {
		Done() <-chan struct{}
	}

	// OnPanic is called with the recovered value and stack of a panicking unit.
	OnPanic func(recovered any, stack []byte)
)

type Options struct {
	// ID names the fiber in logs and metrics. Defaults to "fiber-<random>".
	ID string
	// Context stops the fiber when cancelled. Only used by ThreadFiber.
	Context context.Context
	Logger  *slog.Logger
	OnPanic OnPanic
	Metrics Metrics
}

func (o Options) withDefaults() Options {
	if o.ID == "" {
		o.ID = "fiber-" + gonanoid.Must(6)
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	o.Logger = o.Logger.With(slog.String("fiber", o.ID))
	if o.Metrics == nil {
		o.Metrics = NopMetrics()
	}
	if o.OnPanic == nil {
		log := o.Logger
		o.OnPanic = func(recovered any, stack []byte) {
			log.Error("fiber unit panicked", slog.Any("recovered", recovered), slog.String("stack", string(stack)))
		}
	}
	return o
}

// Do adds fn to f and waits until it ran, returning its error. If ctx is done
// first, Do returns the context error; fn still runs once its turn comes.
//
// Do must not be called from a unit running on f.
func Do(ctx context.Context, f Fiber, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	f.Add(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("fiber unit panicked: %v", r)
				panic(r)
			}
			done <- err
		}()
		err = fn()
	})
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
