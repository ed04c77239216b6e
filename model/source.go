// Package model holds the data types shared across every pipeline stage:
// SourceId, RawInstrument, NormalizedSymbol, SymbolRecord, Registry,
// DirectionConfig, DirectionRecord and ValidationResult.
package model

import "fmt"

// SourceId identifies one (venue, market-type) endpoint. Fixed at eight
// values, known at compile time; every per-source array in this package is
// sized NumSources.
type SourceId int

const (
	BinanceSpot SourceId = iota
	BinanceFutures
	BybitSpot
	BybitFutures
	MexcSpot
	MexcFutures
	OkxSpot
	OkxFutures

	NumSources = 8
)

var sourceNames = [NumSources]string{
	"BinanceSpot", "BinanceFutures",
	"BybitSpot", "BybitFutures",
	"MexcSpot", "MexcFutures",
	"OkxSpot", "OkxFutures",
}

// String returns the canonical name used in config, logs and reports.
func (s SourceId) String() string {
	if s < 0 || int(s) >= NumSources {
		return fmt.Sprintf("SourceId(%d)", int(s))
	}
	return sourceNames[s]
}

// IsSpot reports whether s addresses a spot market.
func (s SourceId) IsSpot() bool { return s%2 == 0 }

// IsFutures reports whether s addresses a USDT-margined perpetual futures market.
func (s SourceId) IsFutures() bool { return s%2 == 1 }

// Valid reports whether s is one of the eight known sources.
func (s SourceId) Valid() bool { return s >= 0 && int(s) < NumSources }

// AllSources returns the eight SourceIds in enumeration order.
func AllSources() [NumSources]SourceId {
	return [NumSources]SourceId{
		BinanceSpot, BinanceFutures,
		BybitSpot, BybitFutures,
		MexcSpot, MexcFutures,
		OkxSpot, OkxFutures,
	}
}

// SourceIdFromString parses one of the sourceNames values, case-sensitive,
// matching how config files and directions.toml name sources.
func SourceIdFromString(s string) (SourceId, error) {
	for i, n := range sourceNames {
		if n == s {
			return SourceId(i), nil
		}
	}
	return -1, fmt.Errorf("unknown source %q", s)
}
