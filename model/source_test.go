package model

import "testing"

func TestSourceIdStringRoundTrip(t *testing.T) {
	for _, s := range AllSources() {
		got, err := SourceIdFromString(s.String())
		if err != nil {
			t.Fatalf("SourceIdFromString(%q) failed: %v", s.String(), err)
		}
		if got != s {
			t.Fatalf("round trip mismatch: %v -> %q -> %v", s, s.String(), got)
		}
	}
}

func TestSourceIdSpotFuturesParity(t *testing.T) {
	cases := []struct {
		source      SourceId
		wantSpot    bool
		wantFutures bool
	}{
		{BinanceSpot, true, false},
		{BinanceFutures, false, true},
		{BybitSpot, true, false},
		{BybitFutures, false, true},
		{MexcSpot, true, false},
		{MexcFutures, false, true},
		{OkxSpot, true, false},
		{OkxFutures, false, true},
	}
	for _, c := range cases {
		if c.source.IsSpot() != c.wantSpot || c.source.IsFutures() != c.wantFutures {
			t.Errorf("%v: IsSpot()=%v IsFutures()=%v, want %v/%v", c.source, c.source.IsSpot(), c.source.IsFutures(), c.wantSpot, c.wantFutures)
		}
	}
}

func TestSourceIdFromStringUnknown(t *testing.T) {
	if _, err := SourceIdFromString("KucoinSpot"); err == nil {
		t.Fatal("expected error for a venue outside the fixed eight-source model")
	}
}

func TestNumSourcesIsEight(t *testing.T) {
	if NumSources != 8 {
		t.Fatalf("NumSources = %d, want 8", NumSources)
	}
	if len(AllSources()) != 8 {
		t.Fatalf("AllSources() length = %d, want 8", len(AllSources()))
	}
}
