package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"EmaPull/internal/domain/models"
	domain "EmaPull/internal/domain/repository"
	"EmaPull/pkg/cache"
)

func sampleSnapshot(symbol string) *models.EmaSnapshot {
	snap := models.NewSnapshot(symbol, "1h", time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC))
	snap.LastPrice = 50100.5
	snap.Emas[9] = models.EmaPoint{Period: 9, Value: 50050, Previous: 50000, Trend: models.TrendUp, PriceDistancePct: 0.1}
	snap.Emas[21] = models.EmaPoint{Period: 21, Value: 49900, Previous: 49950, Trend: models.TrendDown, PriceDistancePct: 0.4}
	snap.Signals["price_above_ema9"] = true
	snap.Signals["bullish_alignment"] = false
	snap.Candle = models.CandleData{Open: 50000, High: 50200, Low: 49900, Close: 50100.5, Volume: 1234}
	return snap
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewSnapshotStore(mem)

	snap := sampleSnapshot("BTC/USDT")
	if err := store.Store(ctx, snap, time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := store.Get(ctx, "BTC/USDT")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Symbol != "BTC/USDT" || got.LastPrice != 50100.5 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}
	if got.Emas[9].Trend != models.TrendUp {
		t.Fatalf("expected EMA9 trend up, got %s", got.Emas[9].Trend)
	}
	if !got.Signals["price_above_ema9"] {
		t.Fatalf("signal lost in round trip")
	}

	// cache key form must resolve to the same snapshot
	if _, err := store.Get(ctx, "BTC_USDT"); err != nil {
		t.Fatalf("get by cache key form: %v", err)
	}
}

func TestSnapshotStoreSubKeys(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewSnapshotStore(mem)

	if err := store.Store(ctx, sampleSnapshot("ETH/USDT"), time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}

	var point models.EmaPoint
	if err := mem.Get(ctx, "ETH_USDT:ema_9", &point); err != nil {
		t.Fatalf("ema sub key: %v", err)
	}
	if point.Period != 9 || point.Value != 50050 {
		t.Fatalf("unexpected ema point: %+v", point)
	}

	var signals models.SignalSet
	if err := mem.Get(ctx, "ETH_USDT:signals", &signals); err != nil {
		t.Fatalf("signals sub key: %v", err)
	}
	if !signals["price_above_ema9"] {
		t.Fatalf("signals sub key mismatch: %v", signals)
	}

	var price float64
	if err := mem.Get(ctx, "ETH_USDT:last_price", &price); err != nil {
		t.Fatalf("last_price sub key: %v", err)
	}
	if price != 50100.5 {
		t.Fatalf("last_price: expected 50100.5, got %v", price)
	}

	var update string
	if err := mem.Get(ctx, "ETH_USDT:last_update", &update); err != nil {
		t.Fatalf("last_update sub key: %v", err)
	}
	if update != "2026-08-29T12:00:00Z" {
		t.Fatalf("last_update: got %q", update)
	}
}

func TestSnapshotStoreExpiryIsNotFound(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewSnapshotStore(mem)

	if err := store.Store(ctx, sampleSnapshot("BTC/USDT"), 10*time.Millisecond); err != nil {
		t.Fatalf("store: %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	_, err := store.Get(ctx, "BTC/USDT")
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected not found after expiry, got %v", err)
	}
}

func TestSnapshotStoreMissingSymbol(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewSnapshotStore(mem)

	_, err := store.Get(ctx, "SOL/USDT")
	if !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSnapshotStoreList(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewSnapshotStore(mem)

	if err := store.Store(ctx, sampleSnapshot("BTC/USDT"), time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := store.List(ctx, []string{"BTC/USDT", "SOL/USDT"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(got))
	}
	if _, ok := got["BTC/USDT"]; !ok {
		t.Fatalf("expected BTC/USDT present, got %v", got)
	}
}

func TestSnapshotStoreClear(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := NewSnapshotStore(mem)

	if err := store.Store(ctx, sampleSnapshot("BTC/USDT"), time.Hour); err != nil {
		t.Fatalf("store: %v", err)
	}

	// main key, two ema sub keys, signals, last_price, last_update
	n, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n != 6 {
		t.Fatalf("expected 6 keys cleared, got %d", n)
	}

	if _, err := store.Get(ctx, "BTC/USDT"); !errors.Is(err, domain.ErrSnapshotNotFound) {
		t.Fatalf("expected not found after clear, got %v", err)
	}
}
