package resilience

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry runs op until it succeeds, returns a non-retryable error, the retry budget is spent,
// or ctx is done. onRetry, when set, sees every failed attempt that will be retried.
func Retry(ctx context.Context, cfg RetryConfig, op func() error, retryable func(error) bool, onRetry func(err error, wait time.Duration)) error {
	cfg = NormalizeRetryConfig(cfg)

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = cfg.InitialInterval
	expo.MaxInterval = cfg.MaxInterval
	expo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(cfg.MaxRetries)), ctx)

	attempt := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if retryable != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	var notify backoff.Notify
	if onRetry != nil {
		notify = func(err error, wait time.Duration) { onRetry(err, wait) }
	}
	return backoff.RetryNotify(attempt, policy, notify)
}
