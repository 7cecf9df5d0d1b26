package http

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fetcher retrieves the content behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*Content, error)
}

// RetryFetcher retries a Fetcher with exponential backoff.
//
// Only failures a repeat may fix are retried (see FetchError.Retryable);
// a 404 or an HTML error page fails immediately.
//
// Example:
//
//	fetcher := NewRetryFetcher(NewClient(), 3, 500*time.Millisecond, 10*time.Second)
//	fetcher.OnRetry = func(locator string, attempt int, err error, wait time.Duration) {
//	    log.Printf("retry %d for %s in %s: %v", attempt, locator, wait, err)
//	}
type RetryFetcher struct {
	next            Fetcher
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration

	// OnRetry, if set, is called before each wait with the 1-based number
	// of the attempt that failed.
	OnRetry func(locator string, attempt int, err error, wait time.Duration)
}

// NewRetryFetcher wraps next. maxRetries is the number of attempts after
// the first one; zero disables retrying.
func NewRetryFetcher(next Fetcher, maxRetries int, initialInterval, maxInterval time.Duration) *RetryFetcher {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryFetcher{
		next:            next,
		maxRetries:      maxRetries,
		initialInterval: initialInterval,
		maxInterval:     maxInterval,
	}
}

// Fetch calls the wrapped Fetcher until it succeeds, fails permanently,
// runs out of retries or ctx is done. Errors are always *FetchError.
func (r *RetryFetcher) Fetch(ctx context.Context, locator string) (*Content, error) {
	var content *Content
	attempt := 0

	operation := func() error {
		attempt++
		c, err := r.next.Fetch(ctx, locator)
		if err != nil {
			var fe *FetchError
			if errors.As(err, &fe) && !fe.Retryable() {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		content = c
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initialInterval
	exp.MaxInterval = r.maxInterval
	exp.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(r.maxRetries)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		if r.OnRetry != nil {
			r.OnRetry(locator, attempt, err, wait)
		}
	})
	if err != nil {
		var fe *FetchError
		if !errors.As(err, &fe) {
			err = &FetchError{Locator: locator, Err: err}
		}
		return nil, err
	}

	return content, nil
}
