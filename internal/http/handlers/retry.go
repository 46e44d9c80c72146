package handlers

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	domainagg "github.com/yungbote/quizprogress-backend/internal/domain/aggregates"
)

// RetryPolicy bounds transparent retries of version conflicts.
type RetryPolicy struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, InitialInterval: 20 * time.Millisecond, MaxInterval: 250 * time.Millisecond}
}

// retryOnConflict re-runs op while it fails with a retryable aggregate code and
// returns the number of retries used. Each run re-reads state, so retries never
// replay a stale mutation.
func retryOnConflict[T any](ctx context.Context, p RetryPolicy, op func() (T, error)) (T, int, error) {
	if p.MaxRetries <= 0 {
		out, err := op()
		return out, 0, err
	}
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}

	tries := 0
	out, err := backoff.Retry(ctx, func() (T, error) {
		tries++
		res, err := op()
		if err != nil && !domainagg.Retryable(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(p.MaxRetries+1)))
	if err != nil && domainagg.CodeOf(err) == "" && ctx.Err() != nil {
		err = domainagg.Wrap(domainagg.CodeCanceled, "retryOnConflict", err)
	}
	if tries > 0 {
		tries--
	}
	return out, tries, err
}
