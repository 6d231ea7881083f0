package indicator

import (
	"EmaPull/internal/domain/models"
)

// ComputeEMA calculates the exponential moving average series for one
// period over the given closes. The first len(closes) < period case is
// the caller's responsibility; here closes must hold at least period
// values. The seed is the simple average of the first period closes,
// subsequent values follow the standard recursion
// ema = alpha*close + (1-alpha)*prev with alpha = 2/(period+1).
func ComputeEMA(closes []float64, period int) []float64 {
	alpha := 2.0 / (float64(period) + 1.0)

	var seed float64
	for _, c := range closes[:period] {
		seed += c
	}
	seed /= float64(period)

	out := make([]float64, 0, len(closes)-period+1)
	out = append(out, seed)
	ema := seed
	for _, c := range closes[period:] {
		ema = alpha*c + (1-alpha)*ema
		out = append(out, ema)
	}
	return out
}

// ComputeEMAs computes EmaPoints for every requested period that the
// series has enough history for. Periods with fewer closes than the
// period length are omitted from the result rather than estimated.
func ComputeEMAs(series *models.CandleSeries, periods []int) map[int]models.EmaPoint {
	closes := series.Closes()
	lastPrice := closes[len(closes)-1]

	points := make(map[int]models.EmaPoint, len(periods))
	for _, period := range periods {
		if len(closes) < period {
			continue
		}
		values := ComputeEMA(closes, period)
		current := values[len(values)-1]
		previous := current
		if len(values) > 1 {
			previous = values[len(values)-2]
		}
		points[period] = models.EmaPoint{
			Period:           period,
			Value:            current,
			Previous:         previous,
			Trend:            trendOf(current, previous),
			PriceDistancePct: (lastPrice - current) / current * 100,
		}
	}
	return points
}

func trendOf(current, previous float64) models.Trend {
	switch {
	case current > previous:
		return models.TrendUp
	case current < previous:
		return models.TrendDown
	default:
		return models.TrendFlat
	}
}
