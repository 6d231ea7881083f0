package models

import "time"

// Trend describes the short term direction of an EMA value.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// EmaPoint holds the computed EMA for one period on one symbol.
type EmaPoint struct {
	Period           int     `json:"period"`
	Value            float64 `json:"value"`
	Previous         float64 `json:"previous"`
	Trend            Trend   `json:"trend"`
	PriceDistancePct float64 `json:"price_distance_pct"`
}

// SignalSet maps a signal name to its boolean state. Signals that
// reference a period without enough history default to false.
type SignalSet map[string]bool

// CandleData is the latest candle snapshot embedded alongside the EMAs.
type CandleData struct {
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// EmaSnapshot is the full per-symbol output of one pipeline run. It is
// what gets cached and what readers get back.
type EmaSnapshot struct {
	Symbol    string           `json:"symbol"`
	Timeframe string           `json:"timeframe"`
	Timestamp string           `json:"timestamp"`
	LastPrice float64          `json:"last_price"`
	Synthetic bool             `json:"synthetic"`
	Emas      map[int]EmaPoint `json:"emas"`
	Signals   SignalSet        `json:"signals"`
	Candle    CandleData       `json:"candle_data"`
}

// NewSnapshot builds an empty snapshot stamped with the current time.
func NewSnapshot(symbol, timeframe string, now time.Time) *EmaSnapshot {
	return &EmaSnapshot{
		Symbol:    symbol,
		Timeframe: timeframe,
		Timestamp: now.UTC().Format(time.RFC3339),
		Emas:      make(map[int]EmaPoint),
		Signals:   make(SignalSet),
	}
}

// HasPeriod reports whether an EMA for the given period was computed.
func (s *EmaSnapshot) HasPeriod(period int) bool {
	_, ok := s.Emas[period]
	return ok
}
