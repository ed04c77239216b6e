package validator

import (
	"testing"

	"pairdiscovery/model"
)

func TestApplyValidationClearsInvalidSlotsAndCompacts(t *testing.T) {
	reg := model.NewRegistry()
	reg.AddRecord(model.SymbolRecord{
		CanonicalName: "BTC-USDT",
		SourceNames:   [model.NumSources]*string{model.BinanceSpot: strp("BTCUSDT"), model.OkxSpot: strp("BTC-USDT")},
	})
	reg.AddRecord(model.SymbolRecord{
		CanonicalName: "DEAD-USDT",
		SourceNames:   [model.NumSources]*string{model.BinanceSpot: strp("DEADUSDT")},
	})

	var results [model.NumSources]*model.ValidationResult
	binanceResult := model.NewValidationResult(model.BinanceSpot)
	binanceResult.MarkValid(0)
	binanceResult.MarkInvalid(1, "DEADUSDT", model.NoMessage)
	results[model.BinanceSpot] = binanceResult

	okxResult := model.NewValidationResult(model.OkxSpot)
	okxResult.MarkValid(0)
	results[model.OkxSpot] = okxResult

	ApplyValidation(reg, results)

	if len(reg.Records) != 1 {
		t.Fatalf("expected DEAD-USDT (invalid on its only source) to be compacted away, got %d records", len(reg.Records))
	}
	if reg.Records[0].CanonicalName != "BTC-USDT" {
		t.Fatalf("expected BTC-USDT to survive, got %s", reg.Records[0].CanonicalName)
	}
	if !reg.Records[0].Populated(model.BinanceSpot) || !reg.Records[0].Populated(model.OkxSpot) {
		t.Fatalf("expected both valid slots to remain populated on the surviving record")
	}
}

func TestSourceForDispatchesByVenue(t *testing.T) {
	cases := []model.SourceId{model.BinanceSpot, model.BinanceFutures, model.OkxSpot, model.OkxFutures, model.MexcSpot, model.MexcFutures}
	for _, s := range cases {
		src := sourceFor(s, "wss://example")
		if src.ParseMessage == nil {
			t.Errorf("sourceFor(%v) returned a wsSource with no ParseMessage", s)
		}
	}
}
