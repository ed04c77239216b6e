package model

import "github.com/shopspring/decimal"

// MaxSymbols caps the registry size.
const MaxSymbols = 1024

// MaxDirections is the number of configured cross-venue directions.
const MaxDirections = 12

// TradingStatus discriminates a RawInstrument's venue-reported state.
// The fetcher already filters on this before handing instruments to the
// normalizer, so by the time a RawInstrument reaches normalization its
// status is always Trading; the discriminant is kept on the struct because
// the per-venue parsers need somewhere to record what they saw.
type TradingStatus int

const (
	StatusUnknown TradingStatus = iota
	StatusTrading
	StatusNotTrading
)

// Attributes bundles the four numeric quantization fields carried from the fetcher
// through the normalizer into SymbolRecord. A nil pointer means the venue did not supply
// that field.
type Attributes struct {
	MinQty      *decimal.Decimal
	MaxQty      *decimal.Decimal
	TickSize    *decimal.Decimal
	MinNotional *decimal.Decimal
}

// RawInstrument is one venue's listing of one instrument, as returned by the fetcher
// and consumed by the normalizer. Discarded after normalization.
type RawInstrument struct {
	Source     SourceId
	Symbol     string // exchange-native symbol string, e.g. "BTCUSDT" or "BTC-USDT-SWAP"
	Base       string // declared base asset, when the venue reports one directly (Binance, Bybit, MEXC, OKX)
	Quote      string // declared quote asset, when the venue reports one directly
	Status     TradingStatus
	Attributes Attributes
}

// NormalizedSymbol is the normalizer's output: one source's canonicalization of one
// RawInstrument.
type NormalizedSymbol struct {
	Source         SourceId
	CanonicalName  string // "{BASE}-USDT", uppercase
	ExchangeSymbol string // original exchange-native symbol, needed for WS subscribe and feed lookup
	Attributes     Attributes
}
