package indicator

import (
	"testing"

	"EmaPull/internal/domain/models"
)

func point(period int, value, previous float64) models.EmaPoint {
	return models.EmaPoint{Period: period, Value: value, Previous: previous}
}

func TestDeriveSignalsBullishStack(t *testing.T) {
	points := map[int]models.EmaPoint{
		9:  point(9, 105, 104),
		21: point(21, 103, 103),
		50: point(50, 100, 100),
	}

	signals := DeriveSignals(110, points, []int{9, 21, 50})

	wantTrue := []string{
		"price_above_ema9", "price_above_ema21", "price_above_ema50",
		"ema9_above_ema21", "ema9_above_ema50", "ema21_above_ema50",
		"bullish_alignment",
	}
	for _, name := range wantTrue {
		if !signals[name] {
			t.Fatalf("expected %s to be true", name)
		}
	}
	if signals["bearish_alignment"] {
		t.Fatalf("bearish_alignment must be false in a bullish stack")
	}
}

func TestDeriveSignalsBearishStack(t *testing.T) {
	points := map[int]models.EmaPoint{
		9:  point(9, 95, 96),
		21: point(21, 98, 98),
		50: point(50, 100, 100),
	}

	signals := DeriveSignals(90, points, []int{9, 21, 50})

	if !signals["bearish_alignment"] {
		t.Fatalf("expected bearish_alignment to be true")
	}
	if signals["bullish_alignment"] {
		t.Fatalf("alignments must never both be true")
	}
	for _, name := range []string{"price_above_ema9", "ema9_above_ema21"} {
		if signals[name] {
			t.Fatalf("expected %s to be false", name)
		}
	}
}

func TestDeriveSignalsAlignmentNeedsPriceConfirmation(t *testing.T) {
	points := map[int]models.EmaPoint{
		9:  point(9, 105, 104),
		21: point(21, 103, 103),
		50: point(50, 100, 100),
	}

	// EMAs stacked bullish but price under EMA9
	signals := DeriveSignals(104, points, []int{9, 21, 50})

	if signals["bullish_alignment"] {
		t.Fatalf("alignment must require price above EMA9")
	}
	if signals["bearish_alignment"] {
		t.Fatalf("bullish stack must not read as bearish")
	}
}

func TestDeriveSignalsMissingPeriodDefaultsFalse(t *testing.T) {
	points := map[int]models.EmaPoint{
		9:  point(9, 105, 104),
		21: point(21, 103, 103),
	}

	signals := DeriveSignals(110, points, []int{9, 21, 50})

	for _, name := range []string{
		"price_above_ema50", "ema9_above_ema50", "ema21_above_ema50",
		"bullish_alignment", "bearish_alignment",
	} {
		got, ok := signals[name]
		if !ok {
			t.Fatalf("expected %s to be present", name)
		}
		if got {
			t.Fatalf("expected %s to default to false with EMA50 missing", name)
		}
	}
	if !signals["price_above_ema9"] {
		t.Fatalf("signals on computed periods must still fire")
	}
}

func TestDeriveSignalsCrosses(t *testing.T) {
	tests := []struct {
		name       string
		e9, e21    models.EmaPoint
		wantGolden bool
		wantDeath  bool
	}{
		{
			name:       "golden cross fires on upward crossover",
			e9:         point(9, 102, 99),
			e21:        point(21, 100, 100),
			wantGolden: true,
		},
		{
			name:      "death cross fires on downward crossover",
			e9:        point(9, 98, 101),
			e21:       point(21, 100, 100),
			wantDeath: true,
		},
		{
			name: "no cross while already above",
			e9:   point(9, 102, 101),
			e21:  point(21, 100, 100),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points := map[int]models.EmaPoint{9: tt.e9, 21: tt.e21}

			signals := DeriveSignals(100, points, []int{9, 21})

			if signals["golden_cross"] != tt.wantGolden {
				t.Fatalf("golden_cross: expected %v, got %v", tt.wantGolden, signals["golden_cross"])
			}
			if signals["death_cross"] != tt.wantDeath {
				t.Fatalf("death_cross: expected %v, got %v", tt.wantDeath, signals["death_cross"])
			}
		})
	}
}
