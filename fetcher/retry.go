package fetcher

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/jpillora/backoff"

	"pairdiscovery/config"
)

// ErrPermanent wraps an HTTP error status. withRetry returns it at once for
// a non-retryable status (any 4xx other than 429), and after the last
// attempt when a retryable status (5xx or 429) persisted.
type ErrPermanent struct {
	StatusCode int
	Body       string
}

func (e *ErrPermanent) Error() string {
	return "permanent HTTP error " + http.StatusText(e.StatusCode)
}

// retryable reports whether err (or httpStatus, when non-zero) should be
// retried: connection failure, timeout, 5xx, or 429.
func retryable(err error, httpStatus int) bool {
	if httpStatus != 0 {
		return httpStatus >= 500 || httpStatus == http.StatusTooManyRequests
	}
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// withRetry runs fn up to cfg.MaxAttempts times, honoring a
// 100ms·2^(attempt-1) backoff schedule via jpillora/backoff, retrying only
// transient failures and returning *ErrPermanent unchanged on a
// non-retryable HTTP error.
func withRetry(ctx context.Context, cfg config.RetryConfig, fn func(ctx context.Context) ([]byte, int, error)) ([]byte, error) {
	b := &backoff.Backoff{
		Min:    cfg.BaseDelay,
		Max:    cfg.MaxDelay,
		Factor: cfg.BackoffMultiplier,
	}
	if b.Max == 0 {
		b.Max = 30 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		body, status, err := fn(ctx)
		if err == nil && status < 400 {
			return body, nil
		}

		if err == nil && status >= 400 {
			if !retryable(nil, status) {
				return nil, &ErrPermanent{StatusCode: status, Body: string(body)}
			}
			lastErr = &ErrPermanent{StatusCode: status, Body: string(body)}
		} else {
			lastErr = err
			if !retryable(err, 0) {
				return nil, err
			}
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(b.Duration()):
		}
	}
	return nil, lastErr
}
