package model

import "testing"

func strp(s string) *string { return &s }

func TestRegistryAddRecordAssignsContiguousIds(t *testing.T) {
	reg := NewRegistry()
	reg.AddRecord(SymbolRecord{CanonicalName: "BTC-USDT", SourceNames: [NumSources]*string{BinanceSpot: strp("BTCUSDT")}})
	reg.AddRecord(SymbolRecord{CanonicalName: "ETH-USDT", SourceNames: [NumSources]*string{BinanceSpot: strp("ETHUSDT")}})

	if reg.Records[0].Id != 0 || reg.Records[1].Id != 1 {
		t.Fatalf("expected contiguous ids 0,1, got %d,%d", reg.Records[0].Id, reg.Records[1].Id)
	}

	id, ok := reg.Resolve(BinanceSpot, "ETHUSDT")
	if !ok || id != 1 {
		t.Fatalf("Resolve(BinanceSpot, ETHUSDT) = (%d, %v), want (1, true)", id, ok)
	}
}

func TestRegistryClearSlotThenCompactDropsEmptyRecord(t *testing.T) {
	reg := NewRegistry()
	reg.AddRecord(SymbolRecord{
		CanonicalName: "BTC-USDT",
		SourceNames:   [NumSources]*string{BinanceSpot: strp("BTCUSDT"), OkxSpot: strp("BTC-USDT")},
	})
	reg.AddRecord(SymbolRecord{
		CanonicalName: "ETH-USDT",
		SourceNames:   [NumSources]*string{BinanceSpot: strp("ETHUSDT")},
	})

	reg.ClearSlot(0, BinanceSpot)
	if reg.Records[0].Populated(BinanceSpot) {
		t.Fatal("expected BinanceSpot slot cleared")
	}
	if !reg.Records[0].Populated(OkxSpot) {
		t.Fatal("expected OkxSpot slot to remain populated")
	}

	reg.ClearSlot(1, BinanceSpot)
	remap := reg.Compact()

	if len(reg.Records) != 1 {
		t.Fatalf("expected 1 record after compaction, got %d", len(reg.Records))
	}
	if reg.Records[0].CanonicalName != "BTC-USDT" {
		t.Fatalf("expected surviving record to be BTC-USDT, got %s", reg.Records[0].CanonicalName)
	}
	if newId, ok := remap[0]; !ok || newId != 0 {
		t.Fatalf("expected remap[0] = 0, got (%d, %v)", newId, ok)
	}
	if _, ok := remap[1]; ok {
		t.Fatal("did not expect a remap entry for the dropped record")
	}

	if _, ok := reg.Resolve(BinanceSpot, "BTCUSDT"); ok {
		t.Fatal("expected BinanceSpot/BTCUSDT reverse entry removed after ClearSlot")
	}
	if _, ok := reg.Resolve(OkxSpot, "BTC-USDT"); !ok {
		t.Fatal("expected OkxSpot/BTC-USDT reverse entry to survive compaction")
	}
}

func TestRegistryValidateRejectsEmptyRecord(t *testing.T) {
	reg := NewRegistry()
	reg.AddRecord(SymbolRecord{CanonicalName: "BTC-USDT"})
	if err := reg.Validate(); err == nil {
		t.Fatal("expected Validate to reject a record with no populated source slots")
	}
}
