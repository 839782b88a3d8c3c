// Where: cli/internal/usecase/deploy/retry.go
// What: Bounded fixed-delay retry policy for provider calls.
// Why: Ride out transient conflicts without hiding persistent failures.
package deploy

import (
	"context"
	"time"
)

// RetryPolicy retries an operation on errors its predicate accepts. It is
// configuration, not behavior: callers decide what counts as retryable.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
	// Sleep is swappable for tests; nil means time.Sleep.
	Sleep func(time.Duration)
}

// DefaultRetryPolicy matches the provider's transient-conflict window.
func DefaultRetryPolicy(retryable func(error) bool) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Delay:       2 * time.Second,
		Retryable:   retryable,
	}
}

// Do runs the operation, retrying retryable errors up to MaxAttempts with a
// fixed delay between attempts. The last error surfaces when the bound is
// exceeded; non-retryable errors surface immediately.
func (p RetryPolicy) Do(ctx context.Context, operation func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		sleep(p.Delay)
	}
	return lastErr
}
