package indicator

import (
	"fmt"
	"sort"

	"EmaPull/internal/domain/models"
)

// Alignment signals always reference this fixed stack of periods.
var alignmentPeriods = [3]int{9, 21, 50}

// DeriveSignals builds the boolean signal set for one symbol from its
// computed EMA points. Any signal referencing a period that was not
// computed is emitted as false, never omitted, so consumers see a
// stable key set.
func DeriveSignals(lastPrice float64, points map[int]models.EmaPoint, periods []int) models.SignalSet {
	sorted := make([]int, len(periods))
	copy(sorted, periods)
	sort.Ints(sorted)

	signals := make(models.SignalSet)

	for _, p := range sorted {
		name := fmt.Sprintf("price_above_ema%d", p)
		point, ok := points[p]
		signals[name] = ok && lastPrice > point.Value
	}

	for i := 0; i < len(sorted); i++ {
		for j := i + 1; j < len(sorted); j++ {
			fast, slow := sorted[i], sorted[j]
			name := fmt.Sprintf("ema%d_above_ema%d", fast, slow)
			fp, fok := points[fast]
			sp, sok := points[slow]
			signals[name] = fok && sok && fp.Value > sp.Value
		}
	}

	e9, ok9 := points[alignmentPeriods[0]]
	e21, ok21 := points[alignmentPeriods[1]]
	e50, ok50 := points[alignmentPeriods[2]]
	haveStack := ok9 && ok21 && ok50

	signals["bullish_alignment"] = haveStack &&
		lastPrice > e9.Value && e9.Value > e21.Value && e21.Value > e50.Value
	signals["bearish_alignment"] = haveStack &&
		lastPrice < e9.Value && e9.Value < e21.Value && e21.Value < e50.Value

	haveCross := ok9 && ok21
	signals["golden_cross"] = haveCross && e9.Value > e21.Value && e9.Previous <= e21.Previous
	signals["death_cross"] = haveCross && e9.Value < e21.Value && e9.Previous >= e21.Previous

	return signals
}
