package models

import "strings"

// CacheSymbol converts pair notation to the form used in cache keys,
// "BTC/USDT" to "BTC_USDT".
func CacheSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", "_"))
}

// PairSymbol converts a cache key symbol back to pair notation,
// "BTC_USDT" to "BTC/USDT".
func PairSymbol(cacheSymbol string) string {
	return strings.ReplaceAll(cacheSymbol, "_", "/")
}
