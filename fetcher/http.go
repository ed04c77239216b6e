package fetcher

import (
	"context"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "pairdiscovery/1.0 (+pair-discovery subsystem)"

// httpGet issues a GET against url with a 10s per-attempt timeout and an
// optional rate limiter throttling request start, returning the body and
// status code without interpreting either — callers classify retryability
// themselves via retryable().
func httpGet(ctx context.Context, client *http.Client, limiter *rate.Limiter, url string) ([]byte, int, error) {
	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, 0, err
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// newLimiter builds a token-bucket limiter from requests-per-second/burst
// config, or nil (unlimited) when rps is non-positive.
func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
