package models

import "fmt"

// Candle represents a single OHLCV record for one interval.
type Candle struct {
	Timestamp int64   `json:"timestamp"` // unix seconds, interval open time
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// CandleSeries is a chronologically ordered candle sequence for one
// symbol/timeframe. Synthetic marks series produced by the sample
// generator instead of the exchange, so consumers can tell real data
// from demo data.
type CandleSeries struct {
	Symbol    string   `json:"symbol"`
	Timeframe string   `json:"timeframe"`
	Synthetic bool     `json:"synthetic"`
	Candles   []Candle `json:"candles"`
}

// Validate checks the series is non-empty and strictly increasing in time.
func (s *CandleSeries) Validate() error {
	if len(s.Candles) == 0 {
		return fmt.Errorf("candle series for %s is empty", s.Symbol)
	}
	for i := 1; i < len(s.Candles); i++ {
		if s.Candles[i].Timestamp <= s.Candles[i-1].Timestamp {
			return fmt.Errorf("candle series for %s not monotonic at index %d", s.Symbol, i)
		}
	}
	return nil
}

// Closes returns the close prices in chronological order.
func (s *CandleSeries) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Last returns the most recent candle. Call Validate first.
func (s *CandleSeries) Last() Candle {
	return s.Candles[len(s.Candles)-1]
}

// LastPrice returns the most recent close.
func (s *CandleSeries) LastPrice() float64 {
	return s.Last().Close
}

// Len returns the number of candles.
func (s *CandleSeries) Len() int {
	return len(s.Candles)
}
