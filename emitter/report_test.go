package emitter

import (
	"strings"
	"testing"

	"pairdiscovery/logger"
	"pairdiscovery/model"
)

func TestValidationReportTextTruncatesInvalidListing(t *testing.T) {
	r := model.NewValidationResult(model.BinanceSpot)
	r.Total = maxInvalidListed + 5
	for i := 0; i < maxInvalidListed+5; i++ {
		r.MarkInvalid(uint16(i), "SYM"+string(rune('A'+i%26)), model.NoMessage)
	}
	var results [model.NumSources]*model.ValidationResult
	results[model.BinanceSpot] = r

	text := string(validationReportText(results))
	if !strings.Contains(text, "...and 5 more") {
		t.Fatalf("expected truncation suffix \"...and 5 more\", got:\n%s", text)
	}
	if strings.Count(text, "\n  SYM") != maxInvalidListed {
		t.Fatalf("expected exactly %d listed invalid lines, got text:\n%s", maxInvalidListed, text)
	}
}

func TestValidationReportTextReportsMissingSource(t *testing.T) {
	var results [model.NumSources]*model.ValidationResult
	text := string(validationReportText(results))
	if !strings.Contains(text, "BinanceSpot: no output") {
		t.Fatalf("expected a \"no output\" line for every source with a nil result, got:\n%s", text)
	}
}

func TestValidationReportTextIncludesRecoverableErrorCounters(t *testing.T) {
	logger.RecordWarn("fetcher")
	logger.RecordError("validator")

	var results [model.NumSources]*model.ValidationResult
	text := string(validationReportText(results))
	if !strings.Contains(text, "recoverable errors:") {
		t.Fatalf("expected a recoverable errors section, got:\n%s", text)
	}
	if !strings.Contains(text, "fetch:") || !strings.Contains(text, "validate:") || !strings.Contains(text, "other:") {
		t.Fatalf("expected fetch/validate/other buckets, got:\n%s", text)
	}
}

func TestSymbolsTextListsEverySource(t *testing.T) {
	reg := model.NewRegistry()
	sym := "BTCUSDT"
	reg.AddRecord(model.SymbolRecord{
		CanonicalName: "BTC-USDT",
		SourceNames:   [model.NumSources]*string{model.BinanceSpot: &sym},
	})
	text := string(symbolsText(reg))
	if !strings.Contains(text, "BTC-USDT") || !strings.Contains(text, "BTCUSDT") {
		t.Fatalf("expected the canonical name and populated exchange symbol in the output, got:\n%s", text)
	}
	if strings.Count(text, "\t-") != model.NumSources-1 {
		t.Fatalf("expected %d unpopulated-slot placeholders, got text:\n%s", model.NumSources-1, text)
	}
}
