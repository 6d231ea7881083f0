package repository

import (
	"testing"
	"time"
)

func TestIsValidTimeframe(t *testing.T) {
	for _, tf := range []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d", "1w"} {
		if !IsValidTimeframe(tf) {
			t.Fatalf("%s must be valid", tf)
		}
	}
	for _, tf := range []string{"", "2h", "1H", "3d", "candle"} {
		if IsValidTimeframe(tf) {
			t.Fatalf("%s must be invalid", tf)
		}
	}
}

func TestNormalizeTimeframe(t *testing.T) {
	if got := NormalizeTimeframe("4h"); got != Timeframe4h {
		t.Fatalf("expected 4h, got %s", got)
	}
	if got := NormalizeTimeframe("bogus"); got != Timeframe1h {
		t.Fatalf("expected 1h fallback, got %s", got)
	}
}

func TestTimeframeDuration(t *testing.T) {
	if d := Timeframe1w.Duration(); d != 7*24*time.Hour {
		t.Fatalf("1w duration %v", d)
	}
	if d := Timeframe("junk").Duration(); d != time.Hour {
		t.Fatalf("unknown timeframe must default to an hour, got %v", d)
	}
}
