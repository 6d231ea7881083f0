package binance

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"EmaPull/internal/domain/models"
	"EmaPull/internal/domain/repository"
)

// volatilityByTimeframe scales the random walk step to the interval
// length so longer candles move more.
var volatilityByTimeframe = map[string]float64{
	"1m":  0.002,
	"5m":  0.005,
	"15m": 0.008,
	"30m": 0.01,
	"1h":  0.015,
	"4h":  0.025,
	"1d":  0.04,
	"1w":  0.08,
}

// Generator produces plausible random walk candle series for demo and
// test runs when real exchange data is unavailable.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. The same seed yields the same series.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Series generates count candles for symbol, ending at the current
// interval. The result is always flagged as synthetic.
func (g *Generator) Series(symbol, timeframe string, count int) *models.CandleSeries {
	g.mu.Lock()
	defer g.mu.Unlock()

	base := basePrice(symbol)
	vol, ok := volatilityByTimeframe[timeframe]
	if !ok {
		vol = 0.015
	}
	step := repository.NormalizeTimeframe(timeframe).Duration()
	start := time.Now().Add(-time.Duration(count) * step).Truncate(step)

	series := &models.CandleSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Synthetic: true,
		Candles:   make([]models.Candle, 0, count),
	}

	price := base
	floor := base * 0.1
	for i := 0; i < count; i++ {
		open := price
		change := (g.rng.Float64()*2 - 1) * vol
		price = open * (1 + change)
		if price < floor {
			price = floor
		}

		high := open
		if price > high {
			high = price
		}
		high *= 1 + g.rng.Float64()*vol*0.5
		low := open
		if price < low {
			low = price
		}
		low *= 1 - g.rng.Float64()*vol*0.5

		series.Candles = append(series.Candles, models.Candle{
			Timestamp: start.Add(time.Duration(i) * step).Unix(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     price,
			Volume:    100 + g.rng.Float64()*9900,
		})
	}
	return series
}

func basePrice(symbol string) float64 {
	switch {
	case strings.HasPrefix(symbol, "BTC"):
		return 50000
	case strings.HasPrefix(symbol, "ETH"):
		return 3000
	default:
		return 1.0
	}
}
