package directions

import (
	"testing"

	"pairdiscovery/model"
)

func strp(s string) *string { return &s }

func buildRegistry() *model.Registry {
	reg := model.NewRegistry()
	reg.AddRecord(model.SymbolRecord{
		CanonicalName: "BTC-USDT",
		SourceNames:   [model.NumSources]*string{model.BinanceSpot: strp("BTCUSDT"), model.BinanceFutures: strp("BTCUSDT")},
	})
	reg.AddRecord(model.SymbolRecord{
		CanonicalName: "ETH-USDT",
		SourceNames:   [model.NumSources]*string{model.BinanceSpot: strp("ETHUSDT")},
	})
	reg.AddRecord(model.SymbolRecord{
		CanonicalName: "SOL-USDT",
		SourceNames:   [model.NumSources]*string{model.BinanceFutures: strp("SOLUSDT")},
	})
	return reg
}

func TestBuildComputesSpotFuturesIntersection(t *testing.T) {
	reg := buildRegistry()
	records := Build(reg, []model.DirectionConfig{
		{Id: 0, Name: "binance_spot_binance_futures", SpotSource: model.BinanceSpot, FutureSource: model.BinanceFutures},
	})

	if len(records) != 1 {
		t.Fatalf("expected 1 direction record, got %d", len(records))
	}
	r := records[0]
	if len(r.Symbols) != 1 || r.Symbols[0] != 0 {
		t.Fatalf("expected only BTC-USDT's id (0) in the intersection, got %v", r.Symbols)
	}
}

func TestBuildSortsSymbolsAscending(t *testing.T) {
	reg := model.NewRegistry()
	reg.AddRecord(model.SymbolRecord{CanonicalName: "Z-USDT", SourceNames: [model.NumSources]*string{model.BinanceSpot: strp("ZUSDT"), model.BinanceFutures: strp("ZUSDT")}})
	reg.AddRecord(model.SymbolRecord{CanonicalName: "A-USDT", SourceNames: [model.NumSources]*string{model.BinanceSpot: strp("AUSDT"), model.BinanceFutures: strp("AUSDT")}})

	records := Build(reg, []model.DirectionConfig{{Id: 0, SpotSource: model.BinanceSpot, FutureSource: model.BinanceFutures}})
	got := records[0].Symbols
	if len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("expected ascending ids [0 1], got %v", got)
	}
}

func TestRebuildReflectsClearedSlots(t *testing.T) {
	reg := buildRegistry()
	records := Build(reg, []model.DirectionConfig{
		{Id: 0, Name: "binance_spot_binance_futures", SpotSource: model.BinanceSpot, FutureSource: model.BinanceFutures},
	})

	reg.ClearSlot(0, model.BinanceFutures)
	remap := reg.Compact()
	_ = remap

	rebuilt := Rebuild(reg, records)
	if len(rebuilt) != 1 {
		t.Fatalf("expected 1 direction record, got %d", len(rebuilt))
	}
	if len(rebuilt[0].Symbols) != 0 {
		t.Fatalf("expected empty intersection after clearing the only dual-listed record's futures slot, got %v", rebuilt[0].Symbols)
	}
}
