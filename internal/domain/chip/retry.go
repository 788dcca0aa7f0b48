package chip

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrRepeatedCause stops retrying when two consecutive failures share a root cause.
	ErrRepeatedCause = errors.New("repeated failure cause")
	// ErrRetriesExhausted is returned once every attempt has failed.
	ErrRetriesExhausted = errors.New("retries exhausted")
)

// RetryPolicy shapes persistence retries.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy makes five attempts with doubling delays starting at half a second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseBackoff: 500 * time.Millisecond,
		MaxBackoff:  30 * time.Second,
		Multiplier:  2,
	}
}

// Backoff is the delay before the attempt following failed attempt n (1 based).
func (p RetryPolicy) Backoff(n int) time.Duration {
	if p.BaseBackoff <= 0 || n < 1 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := time.Duration(float64(p.BaseBackoff) * math.Pow(mult, float64(n-1)))
	if p.MaxBackoff > 0 && (delay > p.MaxBackoff || delay < 0) {
		delay = p.MaxBackoff
	}
	return delay
}

// Retrier is the retry state machine: {attempt, last cause} -> retry after a delay, or stop.
type Retrier struct {
	policy    RetryPolicy
	attempt   int
	lastCause string
}

// NewRetrier starts a fresh retry sequence.
func NewRetrier(policy RetryPolicy) *Retrier {
	return &Retrier{policy: policy}
}

// Attempts reports how many failures have been observed.
func (r *Retrier) Attempts() int {
	return r.attempt
}

// Next records a failure. It returns the delay before the next attempt, or a terminal error
// wrapping both the stop reason and the failure.
func (r *Retrier) Next(err error) (time.Duration, error) {
	r.attempt++
	cause := rootCause(err)
	repeated := r.attempt > 1 && cause == r.lastCause
	r.lastCause = cause

	switch {
	case repeated:
		return 0, fmt.Errorf("%w after %d attempts: %w", ErrRepeatedCause, r.attempt, err)
	case r.attempt >= max(r.policy.MaxAttempts, 1):
		return 0, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, r.attempt, err)
	default:
		return r.policy.Backoff(r.attempt), nil
	}
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
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

// Retry runs op until it succeeds or the policy stops it. observe, when set, receives
// ok, retry, repeated_cause or exhausted for every attempt.
func Retry(ctx context.Context, policy RetryPolicy, sleep SleepFunc, observe func(outcome string), op func(context.Context) error) error {
	if sleep == nil {
		sleep = sleepContext
	}
	if observe == nil {
		observe = func(string) {}
	}
	retrier := NewRetrier(policy)
	for {
		err := op(ctx)
		if err == nil {
			observe("ok")
			return nil
		}
		delay, stop := retrier.Next(err)
		if stop != nil {
			if errors.Is(stop, ErrRepeatedCause) {
				observe("repeated_cause")
			} else {
				observe("exhausted")
			}
			return stop
		}
		observe("retry")
		if err := sleep(ctx, delay); err != nil {
			return fmt.Errorf("retry interrupted after %d attempts: %w", retrier.Attempts(), err)
		}
	}
}

// rootCause is the message of the innermost wrapped error.
func rootCause(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
