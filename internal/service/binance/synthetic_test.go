package binance

import (
	"encoding/json"
	"testing"
)

func TestGeneratorSeriesShape(t *testing.T) {
	gen := NewGenerator(42)

	series := gen.Series("BTC/USDT", "1h", 500)

	if !series.Synthetic {
		t.Fatalf("generated series must be flagged synthetic")
	}
	if series.Len() != 500 {
		t.Fatalf("expected 500 candles, got %d", series.Len())
	}
	if err := series.Validate(); err != nil {
		t.Fatalf("generated series invalid: %v", err)
	}

	floor := 50000 * 0.1
	for i, c := range series.Candles {
		if c.Close < floor {
			t.Fatalf("candle %d close %v below floor %v", i, c.Close, floor)
		}
		if c.High < c.Open || c.High < c.Close {
			t.Fatalf("candle %d high %v below open/close", i, c.High)
		}
		if c.Low > c.Open || c.Low > c.Close {
			t.Fatalf("candle %d low %v above open/close", i, c.Low)
		}
		if c.Volume < 100 || c.Volume > 10000 {
			t.Fatalf("candle %d volume %v out of range", i, c.Volume)
		}
	}
}

func TestGeneratorDeterministicBySeed(t *testing.T) {
	a := NewGenerator(7).Series("ETH/USDT", "4h", 50)
	b := NewGenerator(7).Series("ETH/USDT", "4h", 50)

	for i := range a.Candles {
		if a.Candles[i].Close != b.Candles[i].Close {
			t.Fatalf("same seed must reproduce the series, diverged at %d", i)
		}
	}
}

func TestParseKline(t *testing.T) {
	raw := []byte(`[1700000000000,"50000.1","50100.2","49900.3","50050.4","1234.5",1700003599999,"0",0,"0","0","0"]`)
	var row []json.RawMessage
	if err := json.Unmarshal(raw, &row); err != nil {
		t.Fatalf("unmarshal row: %v", err)
	}

	candle, err := parseKline(row)
	if err != nil {
		t.Fatalf("parse kline: %v", err)
	}

	if candle.Timestamp != 1700000000 {
		t.Fatalf("timestamp: expected 1700000000, got %d", candle.Timestamp)
	}
	if candle.Open != 50000.1 || candle.Close != 50050.4 {
		t.Fatalf("unexpected OHLC: %+v", candle)
	}
	if candle.Volume != 1234.5 {
		t.Fatalf("volume: expected 1234.5, got %v", candle.Volume)
	}
}

func TestSymbolConversion(t *testing.T) {
	if got := ExchangeSymbol("BTC/USDT"); got != "BTCUSDT" {
		t.Fatalf("exchange symbol: got %s", got)
	}
}
