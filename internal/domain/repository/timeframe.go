package repository

import "time"

// Timeframe identifies a candle interval in exchange notation.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1h  Timeframe = "1h"
	Timeframe4h  Timeframe = "4h"
	Timeframe1d  Timeframe = "1d"
	Timeframe1w  Timeframe = "1w"
)

var timeframeDurations = map[Timeframe]time.Duration{
	Timeframe1m:  time.Minute,
	Timeframe5m:  5 * time.Minute,
	Timeframe15m: 15 * time.Minute,
	Timeframe30m: 30 * time.Minute,
	Timeframe1h:  time.Hour,
	Timeframe4h:  4 * time.Hour,
	Timeframe1d:  24 * time.Hour,
	Timeframe1w:  7 * 24 * time.Hour,
}

// IsValidTimeframe reports whether s names a supported interval.
func IsValidTimeframe(s string) bool {
	_, ok := timeframeDurations[Timeframe(s)]
	return ok
}

// NormalizeTimeframe returns s if valid, otherwise the 1h default.
func NormalizeTimeframe(s string) Timeframe {
	if IsValidTimeframe(s) {
		return Timeframe(s)
	}
	return Timeframe1h
}

// Duration returns the wall clock length of one candle.
func (t Timeframe) Duration() time.Duration {
	if d, ok := timeframeDurations[t]; ok {
		return d
	}
	return time.Hour
}
