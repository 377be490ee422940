// Package quota rations remote write calls with a count-then-pause budget.
package quota

import (
	"context"
	"time"

	"mbh/ledger-sync/internal/backoff"
	"mbh/ledger-sync/internal/logging"
)

// Defaults matching the remote service's per-minute write quota.
const (
	DefaultThreshold = 25
	DefaultPause     = 60 * time.Second
)

// Governor counts write units and pauses once the threshold is reached.
// It is advisory: quota errors can still happen and are retried by callers.
// A Governor is used by one run at a time and is not safe for concurrent use.
type Governor struct {
	threshold int
	pause     time.Duration
	sleep     backoff.Sleeper
	logger    logging.Logger

	pending int
	pauses  int
	charged int
}

// Option configures a Governor
type Option func(*Governor)

// WithSleeper replaces the real sleep, for tests.
func WithSleeper(s backoff.Sleeper) Option {
	return func(g *Governor) { g.sleep = s }
}

// WithLogger sets the logger used to report pauses
func WithLogger(l logging.Logger) Option {
	return func(g *Governor) { g.logger = l }
}

// New creates a Governor. Non-positive values fall back to the defaults.
func New(threshold int, pause time.Duration, opts ...Option) *Governor {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if pause <= 0 {
		pause = DefaultPause
	}
	g := &Governor{
		threshold: threshold,
		pause:     pause,
		sleep:     backoff.Sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Charge records n write units. When the pending total reaches the
// threshold it blocks for the pause and then resets the total to zero.
// It returns ctx.Err() if the pause is interrupted; the total is then
// left unreset.
func (g *Governor) Charge(ctx context.Context, n int) error {
	if n <= 0 {
		return nil
	}
	g.pending += n
	g.charged += n
	if g.pending < g.threshold {
		return nil
	}

	if g.logger != nil {
		g.logger.Info("Write budget reached, pausing",
			logging.Field{Key: logging.FieldCount, Value: g.pending},
			logging.Field{Key: logging.FieldDelay, Value: g.pause.Milliseconds()})
	}
	if err := g.sleep(ctx, g.pause); err != nil {
		return err
	}
	g.pauses++
	g.pending = 0
	return nil
}

// Pending returns the units charged since the last reset
func (g *Governor) Pending() int { return g.pending }

// Pauses returns how many pauses have completed
func (g *Governor) Pauses() int { return g.pauses }

// Charged returns the total units charged over the Governor's lifetime
func (g *Governor) Charged() int { return g.charged }

// Threshold returns the configured budget
func (g *Governor) Threshold() int { return g.threshold }
