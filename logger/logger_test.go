package logger

import "testing"

func TestWithComponent(t *testing.T) {
	log := GetLogger()
	entry := log.WithComponent("test")
	if v, ok := entry.Entry.Data["component"]; !ok || v != "test" {
		t.Fatalf("component field missing: %v", entry.Entry.Data)
	}
}

func TestWithFieldsMergesAllFields(t *testing.T) {
	log := GetLogger()
	entry := log.WithFields(Fields{"source": "BinanceSpot", "count": 5})
	if v, ok := entry.Entry.Data["source"]; !ok || v != "BinanceSpot" {
		t.Fatalf("source field missing: %v", entry.Entry.Data)
	}
	if v, ok := entry.Entry.Data["count"]; !ok || v != 5 {
		t.Fatalf("count field missing: %v", entry.Entry.Data)
	}
}

func TestConfigureInvalidLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := New()
	if err := log.Configure("invalid", "json", "stdout", 0); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}

func TestConfigureInvalidFormat(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := New()
	if err := log.Configure("info", "xml", "stdout", 0); err == nil {
		t.Fatal("expected an error for an unsupported log format")
	}
}

func TestConfigureAppliesLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	log := New()
	if err := log.Configure("warn", "json", "stdout", 0); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if log.GetLevel().String() != "warning" {
		t.Fatalf("level = %s, want warning", log.GetLevel())
	}
}
