// Package validator performs per-source live WebSocket validation of every
// (source, symbol_id) pair admitted into the registry and directions.
package validator

import (
	"pairdiscovery/model"
)

// task is one (symbol_id, exchange_symbol) pair to subscribe and observe.
type task struct {
	SymbolId       uint16
	ExchangeSymbol string
}

// tasksForSource collects every populated slot for source out of reg,
// applying the venue-specific WS casing rule: Binance lowercase, MEXC
// uppercase, Bybit/OKX REST casing (left as-is).
func tasksForSource(reg *model.Registry, source model.SourceId) []task {
	var out []task
	for _, rec := range reg.Records {
		sym := rec.SourceNames[source]
		if sym == nil {
			continue
		}
		out = append(out, task{SymbolId: rec.Id, ExchangeSymbol: wsCasing(source, *sym)})
	}
	return out
}

func wsCasing(source model.SourceId, exchangeSymbol string) string {
	switch source {
	case model.BinanceSpot, model.BinanceFutures:
		return toLower(exchangeSymbol)
	case model.MexcSpot, model.MexcFutures:
		return toUpper(exchangeSymbol)
	default:
		return exchangeSymbol
	}
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}

// batch splits tasks into chunks of size batchSize.
func batch(tasks []task, batchSize int) [][]task {
	if batchSize <= 0 {
		batchSize = len(tasks)
	}
	var out [][]task
	for i := 0; i < len(tasks); i += batchSize {
		end := i + batchSize
		if end > len(tasks) {
			end = len(tasks)
		}
		out = append(out, tasks[i:end])
	}
	return out
}

// batchSizeFor returns the venue-specific batch size, preferring an
// exchanges.toml override and falling back to the venue defaults.
func batchSizeFor(source model.SourceId, override int) int {
	if override > 0 {
		return override
	}
	switch source {
	case model.BinanceSpot, model.BinanceFutures:
		return 200
	case model.OkxSpot, model.OkxFutures:
		return 100
	case model.BybitSpot, model.BybitFutures:
		return 50
	case model.MexcSpot, model.MexcFutures:
		return 30
	default:
		return 50
	}
}
