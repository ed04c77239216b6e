package validator

import (
	"testing"

	"github.com/shopspring/decimal"

	"pairdiscovery/model"
)

func dec(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}

func TestClassifyValidTick(t *testing.T) {
	valid, _ := classify(observation{Bid: dec("100"), Ask: dec("101")})
	if !valid {
		t.Fatal("expected a well-formed bid<=ask tick to classify as valid")
	}
}

func TestClassifyRejectsZeroBid(t *testing.T) {
	valid, reason := classify(observation{Bid: dec("0"), Ask: dec("101")})
	if valid || reason != model.ZeroOrMissingBid {
		t.Fatalf("got (%v, %v), want (false, ZeroOrMissingBid)", valid, reason)
	}
}

func TestClassifyRejectsMissingAsk(t *testing.T) {
	valid, reason := classify(observation{Bid: dec("100"), Ask: nil})
	if valid || reason != model.ZeroOrMissingAsk {
		t.Fatalf("got (%v, %v), want (false, ZeroOrMissingAsk)", valid, reason)
	}
}

func TestClassifyRejectsBidAboveAsk(t *testing.T) {
	valid, reason := classify(observation{Bid: dec("102"), Ask: dec("101")})
	if valid || reason != model.BidAboveAsk {
		t.Fatalf("got (%v, %v), want (false, BidAboveAsk)", valid, reason)
	}
}

func TestClassifyAcceptsBidEqualAsk(t *testing.T) {
	valid, _ := classify(observation{Bid: dec("100"), Ask: dec("100")})
	if !valid {
		t.Fatal("expected bid==ask to classify as valid (the rule is bid<=ask)")
	}
}

func TestBinanceSourceParsesBookTicker(t *testing.T) {
	src := binanceSource("wss://example")
	obs := src.ParseMessage([]byte(`{"s":"BTCUSDT","b":"100.5","a":"100.6"}`))
	if len(obs) != 1 || obs[0].ExchangeSymbol != "btcusdt" {
		t.Fatalf("unexpected parse result: %+v", obs)
	}
	if !obs[0].Bid.Equal(*dec("100.5")) || !obs[0].Ask.Equal(*dec("100.6")) {
		t.Fatalf("unexpected bid/ask: %+v", obs[0])
	}
}

func TestBinanceSourceIgnoresNonTickerMessages(t *testing.T) {
	src := binanceSource("wss://example")
	obs := src.ParseMessage([]byte(`{"result":null,"id":1}`))
	if obs != nil {
		t.Fatalf("expected nil for a non-ticker control message, got %+v", obs)
	}
}

func TestOkxSourceParsesTickerAndKeepalive(t *testing.T) {
	src := okxSource("wss://example")
	obs := src.ParseMessage([]byte(`{"arg":{"channel":"tickers","instId":"BTC-USDT"},"data":[{"bidPx":"100","askPx":"101"}]}`))
	if len(obs) != 1 || obs[0].ExchangeSymbol != "BTC-USDT" {
		t.Fatalf("unexpected parse result: %+v", obs)
	}

	if src.HandleKeepalive == nil {
		t.Fatal("expected okxSource to define HandleKeepalive for its text ping/pong")
	}
}

func TestMexcSourceParsesBookTickerChannel(t *testing.T) {
	src := mexcSource("wss://example", false)
	obs := src.ParseMessage([]byte(`{"c":"spot@public.book_ticker.v3.api.pb@BTCUSDT","s":"BTCUSDT","d":{"b":"100","a":"101"}}`))
	if len(obs) != 1 || obs[0].ExchangeSymbol != "BTCUSDT" {
		t.Fatalf("unexpected parse result: %+v", obs)
	}
}

func TestMexcSourceFuturesUsesDealChannel(t *testing.T) {
	src := mexcSource("wss://example", true)
	payload := src.BuildSubscribe([]task{{SymbolId: 1, ExchangeSymbol: "BTC_USDT"}})
	m, ok := payload.(map[string]interface{})
	if !ok {
		t.Fatalf("expected a map payload, got %T", payload)
	}
	params, ok := m["params"].([]string)
	if !ok || len(params) != 1 || params[0] != "push.deal@BTC_USDT" {
		t.Fatalf("expected the push.deal@ channel prefix for futures, got %+v", params)
	}
}
