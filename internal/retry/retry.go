// Package retry runs an operation under a bounded backoff policy.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy describes how many times an operation is attempted and how long
// to wait between attempts. Multiplier 1 and Jitter 0 give a fixed delay.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Jitter         float64
}

// Fixed returns a policy with a constant delay between attempts.
func Fixed(attempts int, delay time.Duration) Policy {
	return Policy{MaxAttempts: attempts, InitialBackoff: delay, MaxBackoff: delay, Multiplier: 1}
}

func (p Policy) multiplier() float64 {
	if p.Multiplier < 1 {
		return 1
	}
	return p.Multiplier
}

func (p Policy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.InitialBackoff
	exp.Multiplier = p.multiplier()
	exp.RandomizationFactor = p.Jitter
	exp.MaxInterval = p.MaxBackoff
	if exp.MaxInterval < exp.InitialInterval {
		exp.MaxInterval = exp.InitialInterval
	}
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.attempts()-1)), ctx)
}

// Notify is called after a failed attempt that will be retried.
type Notify func(err error, attempt int, wait time.Duration)

// Do calls op until it succeeds, returns a Permanent error, the policy is
// exhausted or ctx is done. op receives the 1-based attempt number.
// The returned int is the number of attempts made.
func Do(ctx context.Context, p Policy, op func(attempt int) error, notify Notify) (int, error) {
	attempt := 0
	operation := func() error {
		attempt++
		return op(attempt)
	}

	var onRetry backoff.Notify
	if notify != nil {
		onRetry = func(err error, wait time.Duration) {
			notify(err, attempt, wait)
		}
	}

	err := backoff.RetryNotify(operation, p.backOff(ctx), onRetry)
	return attempt, err
}

// Permanent marks err so that Do stops retrying and returns it unwrapped.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
