package inbox

import (
	"log/slog"

	"github.com/benbjohnson/clock"
)

type Option func(*options)

type options struct {
	id       string
	log      *slog.Logger
	metrics  Metrics
	clock    clock.Clock
	affinity bool
}

// WithID names the inbox in logs and metrics. Defaults to "inbox-<random>".
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

func WithLogger(log *slog.Logger) Option {
	return func(o *options) { o.log = log }
}

func WithMetrics(m Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClock sets the clock used to compute receive deadlines. It should be
// the clock the scheduler runs on; schedulers implementing
// scheduler.Clocked provide it by default.
func WithClock(c clock.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithAffinityCheck turns the Receive fiber check on or off (default on).
// The check only applies to fibers implementing fiber.Affine.
func WithAffinityCheck(enabled bool) Option {
	return func(o *options) { o.affinity = enabled }
}
