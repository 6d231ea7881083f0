package indicator

import (
	"math"
	"testing"

	"EmaPull/internal/domain/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func seriesFromCloses(closes []float64) *models.CandleSeries {
	s := &models.CandleSeries{Symbol: "BTC/USDT", Timeframe: "1h"}
	for i, c := range closes {
		s.Candles = append(s.Candles, models.Candle{
			Timestamp: int64(1700000000 + i*3600),
			Open:      c,
			High:      c,
			Low:       c,
			Close:     c,
			Volume:    1000,
		})
	}
	return s
}

func TestComputeEMARecursion(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}

	values := ComputeEMA(closes, 3)

	want := []float64{2, 3, 4}
	if len(values) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if !almostEqual(values[i], want[i]) {
			t.Fatalf("value[%d]: expected %v, got %v", i, want[i], values[i])
		}
	}
}

func TestComputeEMAsTrendAndDistance(t *testing.T) {
	tests := []struct {
		name      string
		closes    []float64
		period    int
		wantTrend models.Trend
		wantValue float64
		wantPrev  float64
	}{
		{
			name:      "rising closes trend up",
			closes:    []float64{1, 2, 3, 4, 5},
			period:    3,
			wantTrend: models.TrendUp,
			wantValue: 4,
			wantPrev:  3,
		},
		{
			name:      "falling closes trend down",
			closes:    []float64{5, 4, 3, 2, 1},
			period:    3,
			wantTrend: models.TrendDown,
			wantValue: 2,
			wantPrev:  3,
		},
		{
			name:      "exactly period closes trend flat",
			closes:    []float64{1, 2, 3, 4, 5},
			period:    5,
			wantTrend: models.TrendFlat,
			wantValue: 3,
			wantPrev:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := seriesFromCloses(tt.closes)

			points := ComputeEMAs(series, []int{tt.period})

			point, ok := points[tt.period]
			if !ok {
				t.Fatalf("expected period %d to be computed", tt.period)
			}
			if !almostEqual(point.Value, tt.wantValue) {
				t.Fatalf("value: expected %v, got %v", tt.wantValue, point.Value)
			}
			if !almostEqual(point.Previous, tt.wantPrev) {
				t.Fatalf("previous: expected %v, got %v", tt.wantPrev, point.Previous)
			}
			if point.Trend != tt.wantTrend {
				t.Fatalf("trend: expected %s, got %s", tt.wantTrend, point.Trend)
			}

			last := tt.closes[len(tt.closes)-1]
			wantDist := (last - tt.wantValue) / tt.wantValue * 100
			if !almostEqual(point.PriceDistancePct, wantDist) {
				t.Fatalf("distance: expected %v, got %v", wantDist, point.PriceDistancePct)
			}
		})
	}
}

func TestComputeEMAsInsufficientHistory(t *testing.T) {
	tests := []struct {
		name    string
		count   int
		period  int
		present bool
	}{
		{name: "one short", count: 49, period: 50, present: false},
		{name: "exact", count: 50, period: 50, present: true},
		{name: "one over", count: 51, period: 50, present: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closes := make([]float64, tt.count)
			for i := range closes {
				closes[i] = 100 + float64(i)
			}
			series := seriesFromCloses(closes)

			points := ComputeEMAs(series, []int{tt.period})

			if _, ok := points[tt.period]; ok != tt.present {
				t.Fatalf("period %d with %d closes: present=%v, expected %v", tt.period, tt.count, ok, tt.present)
			}
		})
	}
}

func TestComputeEMAsFullPeriodSet(t *testing.T) {
	closes := make([]float64, 300)
	for i := range closes {
		closes[i] = 50000 + 10*math.Sin(float64(i)/7)
	}
	series := seriesFromCloses(closes)
	periods := []int{9, 21, 50, 100, 200, 500}

	points := ComputeEMAs(series, periods)

	for _, p := range []int{9, 21, 50, 100, 200} {
		if _, ok := points[p]; !ok {
			t.Fatalf("expected EMA%d with 300 closes", p)
		}
	}
	if _, ok := points[500]; ok {
		t.Fatalf("EMA500 must be omitted with 300 closes")
	}
}
