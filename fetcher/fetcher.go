// Package fetcher performs concurrent REST inventory fetching across the
// eight (venue, market) endpoints, with an aggregate 6-of-8 quorum check.
// The Bybit, MEXC and OKX endpoints are retried via withRetry; the two
// Binance endpoints are requested once through the go-binance client, with
// no retry.
package fetcher

import (
	"context"
	"net/http"
	"sync"
	"time"

	"pairdiscovery/config"
	"pairdiscovery/logger"
	"pairdiscovery/metrics"
	"pairdiscovery/model"
)

// ErrInsufficientSources is returned by FetchAll when fewer than
// cfg.MinSuccessfulSources endpoints succeed.
type ErrInsufficientSources struct {
	Successes int
	Required  int
}

func (e *ErrInsufficientSources) Error() string {
	return "insufficient sources succeeded"
}

// Result is the fetcher's output: the per-source instrument lists, keyed by
// SourceId, plus which sources succeeded.
type Result struct {
	PerSource [model.NumSources][]model.RawInstrument
	Succeeded [model.NumSources]bool
}

// FetchAll runs the eight endpoint fetches concurrently (one goroutine per
// source) and applies the quorum policy.
func FetchAll(ctx context.Context, exch *config.ExchangesConfig, minSources int, retry config.RetryConfig) (*Result, error) {
	log := logger.GetLogger().WithComponent("fetcher")
	bySource := exch.BySource()

	result := &Result{}
	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, source := range model.AllSources() {
		source := source
		entry, hasConfig := bySource[source]

		wg.Add(1)
		go func() {
			defer wg.Done()

			if !hasConfig {
				log.WithFields(logger.Fields{"source": source.String()}).
					Warn("no exchanges.toml entry for source; treating as empty result")
				mu.Lock()
				result.Succeeded[source] = true
				mu.Unlock()
				return
			}

			instruments, err := fetchOne(ctx, source, entry, retry)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.WithComponent("fetcher").WithError(err).WithFields(logger.Fields{"source": source.String()}).
					Warn("endpoint fetch failed, excluded from this run")
				metrics.IncrementFetchError(source.String())
				return
			}
			result.PerSource[source] = instruments
			result.Succeeded[source] = true
			metrics.IncrementFetchSuccess(source.String())
		}()
	}
	wg.Wait()

	successes := 0
	for _, ok := range result.Succeeded {
		if ok {
			successes++
		}
	}
	if successes < minSources {
		return result, &ErrInsufficientSources{Successes: successes, Required: minSources}
	}
	return result, nil
}

func fetchOne(ctx context.Context, source model.SourceId, entry config.ExchangeEntry, retry config.RetryConfig) ([]model.RawInstrument, error) {
	client := &http.Client{Timeout: 15 * time.Second}
	limiter := newLimiter(entry.RateLimit.RequestsPerSecond, entry.RateLimit.Burst)

	switch source {
	case model.BinanceSpot:
		return fetchBinanceSpot(ctx, entry.RestURL)
	case model.BinanceFutures:
		return fetchBinanceFutures(ctx, entry.RestURL)
	case model.BybitSpot:
		return fetchBybit(ctx, client, limiter, entry.RestURL, source, "spot", retry)
	case model.BybitFutures:
		return fetchBybit(ctx, client, limiter, entry.RestURL, source, "linear", retry)
	case model.MexcSpot:
		return fetchMexcSpot(ctx, client, limiter, entry.RestURL, retry)
	case model.MexcFutures:
		return fetchMexcFutures(ctx, client, limiter, entry.RestURL, retry)
	case model.OkxSpot:
		return fetchOkx(ctx, client, limiter, entry.RestURL, source, "SPOT", retry)
	case model.OkxFutures:
		return fetchOkx(ctx, client, limiter, entry.RestURL, source, "SWAP", retry)
	default:
		return nil, nil
	}
}
