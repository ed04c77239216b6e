// Package normalizer performs strict per-venue base/quote parsing of
// RawInstrument into NormalizedSymbol.
package normalizer

import (
	"fmt"
	"strings"

	"pairdiscovery/model"
)

// Error discriminates why a RawInstrument was rejected.
type Error struct {
	Reason string // "SymbolMismatch", "InvalidFormat", "InvalidQuote"
	Detail string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Reason, e.Detail) }

func errf(reason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// Normalize parses one RawInstrument into a NormalizedSymbol, or returns a
// *Error describing the rejection. Rejections are not fatal; callers count
// them per-source and continue.
func Normalize(raw model.RawInstrument) (model.NormalizedSymbol, error) {
	base, quote, err := splitSymbol(raw)
	if err != nil {
		return model.NormalizedSymbol{}, err
	}

	base = strings.ToUpper(base)
	quote = strings.ToUpper(quote)

	if quote != "USDT" {
		return model.NormalizedSymbol{}, errf("InvalidQuote", "quote %q is not USDT", quote)
	}
	if base == "" {
		return model.NormalizedSymbol{}, errf("InvalidFormat", "empty base asset")
	}
	if base == "USDT" {
		return model.NormalizedSymbol{}, errf("InvalidFormat", "degenerate pair USDTUSDT")
	}

	return model.NormalizedSymbol{
		Source:         raw.Source,
		CanonicalName:  base + "-" + quote,
		ExchangeSymbol: raw.Symbol,
		Attributes:     raw.Attributes,
	}, nil
}

// splitSymbol derives (base, quote) per the venue-specific rule for raw's
// source.
func splitSymbol(raw model.RawInstrument) (string, string, error) {
	symbol := strings.ToUpper(raw.Symbol)

	switch raw.Source {
	case model.BinanceSpot, model.BinanceFutures:
		return splitConcatenated(symbol, strings.ToUpper(raw.Base), strings.ToUpper(raw.Quote), raw.Symbol)

	case model.BybitSpot, model.BybitFutures:
		base := strings.ToUpper(raw.Base)
		quote := strings.ToUpper(raw.Quote)
		if base == "" || quote == "" {
			return "", "", errf("InvalidFormat", "bybit symbol %q missing declared base/quote", raw.Symbol)
		}
		if symbol != base+quote {
			return "", "", errf("SymbolMismatch", "bybit symbol %q != base(%s)+quote(%s)", raw.Symbol, base, quote)
		}
		return base, quote, nil

	case model.MexcSpot, model.MexcFutures:
		parts := strings.Split(symbol, "_")
		if len(parts) != 2 {
			return "", "", errf("InvalidFormat", "mexc symbol %q: expected exactly one '_'", raw.Symbol)
		}
		return parts[0], parts[1], nil

	case model.OkxSpot:
		parts := strings.Split(symbol, "-")
		if len(parts) != 2 {
			return "", "", errf("InvalidFormat", "okx spot symbol %q: expected exactly one '-'", raw.Symbol)
		}
		return parts[0], parts[1], nil

	case model.OkxFutures:
		parts := strings.Split(symbol, "-")
		if len(parts) != 3 {
			return "", "", errf("InvalidFormat", "okx swap symbol %q: expected exactly two '-'", raw.Symbol)
		}
		if parts[2] != "SWAP" {
			return "", "", errf("InvalidFormat", "okx swap symbol %q: unknown trailing suffix %q", raw.Symbol, parts[2])
		}
		return parts[0], parts[1], nil

	default:
		return "", "", errf("InvalidFormat", "unknown source %v", raw.Source)
	}
}

// splitConcatenated implements the "Binance-style concatenated" rule:
// upper-case, verify symbol == base ++ quote using the venue's declared
// base/quote fields.
func splitConcatenated(symbol, declaredBase, declaredQuote, original string) (string, string, error) {
	if declaredBase == "" || declaredQuote == "" {
		return "", "", errf("InvalidFormat", "symbol %q missing declared base/quote", original)
	}
	if symbol != declaredBase+declaredQuote {
		return "", "", errf("SymbolMismatch", "symbol %q != base(%s)+quote(%s)", original, declaredBase, declaredQuote)
	}
	return declaredBase, declaredQuote, nil
}
