// Package backoff implements the retry delay policy for transient remote
// failures and a context-aware sleep.
package backoff

import (
	"context"
	"math/rand"
	"time"

	"mbh/ledger-sync/internal/ledgererror"
)

// DefaultMaxDelay caps a single wait.
const DefaultMaxDelay = 60 * time.Second

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy computes exponential delays with up to one second of jitter.
type Policy struct {
	MaxDelay time.Duration
	// Jitter returns a value in [0,1). Defaults to math/rand.
	Jitter func() float64
}

// NewPolicy returns a Policy capped at maxDelay (DefaultMaxDelay when zero).
func NewPolicy(maxDelay time.Duration) Policy {
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return Policy{MaxDelay: maxDelay, Jitter: rand.Float64}
}

// Delay returns min(MaxDelay, 2^retry + U(0,1) seconds) for the given
// zero-based retry count.
func (p Policy) Delay(retry int) time.Duration {
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	if retry < 0 {
		retry = 0
	}
	if retry > 30 {
		return maxDelay
	}
	jitter := 0.0
	if p.Jitter != nil {
		jitter = p.Jitter()
	}
	d := time.Duration(1<<uint(retry))*time.Second + time.Duration(jitter*float64(time.Second))
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// RetryFunc is called before each wait with the zero-based retry count,
// the delay about to be slept and the error that triggered it.
type RetryFunc func(retry int, delay time.Duration, err error)

// Retry runs op until it succeeds, returns a non-transient error, or ctx is
// done. Transient errors (quota, timeout) are retried without limit.
// It returns the number of retries performed.
func Retry(ctx context.Context, p Policy, sleep Sleeper, op func(ctx context.Context) error, onRetry RetryFunc) (int, error) {
	if sleep == nil {
		sleep = Sleep
	}
	for retry := 0; ; retry++ {
		if err := ctx.Err(); err != nil {
			return retry, err
		}
		err := op(ctx)
		if err == nil || !ledgererror.IsTransient(err) {
			return retry, err
		}
		delay := p.Delay(retry)
		if onRetry != nil {
			onRetry(retry, delay, err)
		}
		if err := sleep(ctx, delay); err != nil {
			return retry, err
		}
	}
}
