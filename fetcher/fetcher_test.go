package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pairdiscovery/config"
	"pairdiscovery/model"
)

func testRetryConfig() config.RetryConfig {
	return config.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, BackoffMultiplier: 2}
}

func TestFetchBybitFiltersNonTradingAndPages(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		cursor := r.URL.Query().Get("cursor")
		w.Header().Set("Content-Type", "application/json")
		if cursor == "" {
			w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[
				{"symbol":"BTCUSDT","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT"},
				{"symbol":"DEADUSDT","status":"Closed","baseCoin":"DEAD","quoteCoin":"USDT"}
			],"nextPageCursor":"page2"}}`))
			return
		}
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"ETHUSDT","status":"Trading","baseCoin":"ETH","quoteCoin":"USDT"}
		],"nextPageCursor":""}}`))
	}))
	defer server.Close()

	out, err := fetchBybit(context.Background(), server.Client(), nil, server.URL, model.BybitSpot, "spot", testRetryConfig())
	if err != nil {
		t.Fatalf("fetchBybit failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 paged requests, got %d", calls)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 trading instruments across both pages, got %d: %+v", len(out), out)
	}
	if out[0].Symbol != "BTCUSDT" || out[1].Symbol != "ETHUSDT" {
		t.Errorf("unexpected instruments: %+v", out)
	}
}

func TestFetchBybitFutureRequiresLinearPerpetual(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"list":[
			{"symbol":"BTCUSDT","status":"Trading","baseCoin":"BTC","quoteCoin":"USDT","contractType":"LinearPerpetual"},
			{"symbol":"BTCUSD_25DEC","status":"Trading","baseCoin":"BTC","quoteCoin":"USD","contractType":"LinearFutures"}
		],"nextPageCursor":""}}`))
	}))
	defer server.Close()

	out, err := fetchBybit(context.Background(), server.Client(), nil, server.URL, model.BybitFutures, "linear", testRetryConfig())
	if err != nil {
		t.Fatalf("fetchBybit failed: %v", err)
	}
	if len(out) != 1 || out[0].Symbol != "BTCUSDT" {
		t.Fatalf("expected only the LinearPerpetual instrument, got %+v", out)
	}
}

func TestFetchBybitErrorCodeIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"retCode":10001,"retMsg":"bad request","result":{}}`))
	}))
	defer server.Close()

	_, err := fetchBybit(context.Background(), server.Client(), nil, server.URL, model.BybitSpot, "spot", testRetryConfig())
	if err == nil {
		t.Fatal("expected an error for a non-zero retCode")
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call (application-level errors are not retried), got %d", calls)
	}
}

func TestFetchMexcSpotFiltersByStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"symbols":[
			{"symbol":"BTCUSDT","status":"1","baseAsset":"BTC","quoteAsset":"USDT","filters":[{"filterType":"LOT_SIZE","minQty":"0.0001","maxQty":"100"},{"filterType":"PRICE_FILTER","tickSize":"0.01"}]},
			{"symbol":"DEADUSDT","status":"0","baseAsset":"DEAD","quoteAsset":"USDT"}
		]}`))
	}))
	defer server.Close()

	out, err := fetchMexcSpot(context.Background(), server.Client(), nil, server.URL, testRetryConfig())
	if err != nil {
		t.Fatalf("fetchMexcSpot failed: %v", err)
	}
	if len(out) != 1 || out[0].Symbol != "BTCUSDT" {
		t.Fatalf("expected only the enabled instrument, got %+v", out)
	}
	if out[0].Attributes.TickSize == nil || out[0].Attributes.TickSize.String() != "0.01" {
		t.Errorf("expected TickSize 0.01, got %v", out[0].Attributes.TickSize)
	}
}

func TestFetchMexcFuturesFiltersByState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"symbol":"BTC_USDT","state":0,"baseCoin":"BTC","quoteCoin":"USDT","minVol":1,"priceUnit":0.5},
			{"symbol":"DEAD_USDT","state":1,"baseCoin":"DEAD","quoteCoin":"USDT"}
		]}`))
	}))
	defer server.Close()

	out, err := fetchMexcFutures(context.Background(), server.Client(), nil, server.URL, testRetryConfig())
	if err != nil {
		t.Fatalf("fetchMexcFutures failed: %v", err)
	}
	if len(out) != 1 || out[0].Symbol != "BTC_USDT" {
		t.Fatalf("expected only the state==0 instrument, got %+v", out)
	}
}

func TestFetchOkxFuturesUsesContractValueAndSettleCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("instType") != "SWAP" {
			t.Errorf("expected instType=SWAP, got %q", r.URL.RawQuery)
		}
		w.Write([]byte(`{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT-SWAP","ctValCcy":"BTC","settleCcy":"USDT","state":"live","lotSz":"1","tickSz":"0.1","minSz":"1"}
		]}`))
	}))
	defer server.Close()

	out, err := fetchOkx(context.Background(), server.Client(), nil, server.URL, model.OkxFutures, "SWAP", testRetryConfig())
	if err != nil {
		t.Fatalf("fetchOkx failed: %v", err)
	}
	if len(out) != 1 || out[0].Base != "BTC" || out[0].Quote != "USDT" {
		t.Fatalf("expected base/quote sourced from ctValCcy/settleCcy, got %+v", out)
	}
}

func TestFetchOkxDropsNonLiveInstruments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"0","msg":"","data":[
			{"instId":"BTC-USDT","baseCcy":"BTC","quoteCcy":"USDT","state":"live"},
			{"instId":"OLD-USDT","baseCcy":"OLD","quoteCcy":"USDT","state":"suspend"}
		]}`))
	}))
	defer server.Close()

	out, err := fetchOkx(context.Background(), server.Client(), nil, server.URL, model.OkxSpot, "SPOT", testRetryConfig())
	if err != nil {
		t.Fatalf("fetchOkx failed: %v", err)
	}
	if len(out) != 1 || out[0].Symbol != "BTC-USDT" {
		t.Fatalf("expected only the live instrument, got %+v", out)
	}
}

func TestWithRetryRetriesOn5xxThenSucceeds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	body, err := withRetry(context.Background(), testRetryConfig(), func(ctx context.Context) ([]byte, int, error) {
		return httpGet(ctx, server.Client(), nil, server.URL)
	})
	if err != nil {
		t.Fatalf("withRetry failed: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("body = %q, want %q", body, "ok")
	}
	if calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls)
	}
}

func TestWithRetryDoesNotRetryOn404(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := withRetry(context.Background(), testRetryConfig(), func(ctx context.Context) ([]byte, int, error) {
		return httpGet(ctx, server.Client(), nil, server.URL)
	})
	if err == nil {
		t.Fatal("expected a permanent error for 404")
	}
	if _, ok := err.(*ErrPermanent); !ok {
		t.Fatalf("expected *ErrPermanent, got %T: %v", err, err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable 4xx, got %d", calls)
	}
}

func TestWithRetryRetriesOn429(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	_, err := withRetry(context.Background(), testRetryConfig(), func(ctx context.Context) ([]byte, int, error) {
		return httpGet(ctx, server.Client(), nil, server.URL)
	})
	if err != nil {
		t.Fatalf("withRetry failed: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected a retry after 429, got %d calls", calls)
	}
}
