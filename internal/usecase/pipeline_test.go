package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"EmaPull/internal/domain/models"
	domrepo "EmaPull/internal/domain/repository"
	"EmaPull/internal/repository"
	"EmaPull/pkg/cache"
	"EmaPull/pkg/logger"
	"EmaPull/pkg/metrics"
)

var (
	recorderOnce sync.Once
	testRecorder *metrics.Recorder
)

func recorder() *metrics.Recorder {
	recorderOnce.Do(func() { testRecorder = metrics.New() })
	return testRecorder
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// stubSource serves canned series per symbol and errors for the rest.
type stubSource struct {
	series map[string]*models.CandleSeries
}

func (s *stubSource) Fetch(_ context.Context, symbol, _ string, _ int) (*models.CandleSeries, error) {
	if series, ok := s.series[symbol]; ok {
		return series, nil
	}
	return nil, fmt.Errorf("%w: no route to exchange", domrepo.ErrDataSourceUnavailable)
}

func risingSeries(symbol string, count int, synthetic bool) *models.CandleSeries {
	series := &models.CandleSeries{Symbol: symbol, Timeframe: "1h", Synthetic: synthetic}
	for i := 0; i < count; i++ {
		price := 100 + float64(i)
		series.Candles = append(series.Candles, models.Candle{
			Timestamp: int64(1700000000 + i*3600),
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    500,
		})
	}
	return series
}

func newTestPipeline(t *testing.T, source domrepo.CandleSource, store domrepo.SnapshotStore, cfg PipelineConfig) *Pipeline {
	t.Helper()
	if cfg.Timeframe == "" {
		cfg.Timeframe = "1h"
	}
	if cfg.TTL == 0 {
		cfg.TTL = time.Hour
	}
	return NewPipeline(source, store, nil, nil, cfg, recorder(), testLogger(t))
}

func TestPipelineIsolatesSymbolFailures(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := repository.NewSnapshotStore(mem)

	source := &stubSource{series: map[string]*models.CandleSeries{
		"ETH/USDT": risingSeries("ETH/USDT", 100, false),
	}}
	pipeline := newTestPipeline(t, source, store, PipelineConfig{
		Symbols: []string{"BTC/USDT", "ETH/USDT"},
		Periods: []int{9, 21, 50},
	})

	report, err := pipeline.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", report.Processed)
	}
	if len(report.Failures) != 1 || report.Failures[0].Symbol != "BTC/USDT" {
		t.Fatalf("expected BTC/USDT failure, got %+v", report.Failures)
	}

	if _, err := store.Get(ctx, "ETH/USDT"); err != nil {
		t.Fatalf("healthy symbol must still be cached: %v", err)
	}
	if _, err := store.Get(ctx, "BTC/USDT"); !errors.Is(err, domrepo.ErrSnapshotNotFound) {
		t.Fatalf("failed symbol must stay absent, got %v", err)
	}
}

func TestPipelineSnapshotContents(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := repository.NewSnapshotStore(mem)

	source := &stubSource{series: map[string]*models.CandleSeries{
		"BTC/USDT": risingSeries("BTC/USDT", 60, false),
	}}
	pipeline := newTestPipeline(t, source, store, PipelineConfig{
		Symbols: []string{"BTC/USDT"},
		Periods: []int{9, 21, 50, 100},
	})

	if _, err := pipeline.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	snap, err := store.Get(ctx, "BTC/USDT")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if snap.LastPrice != 159 {
		t.Fatalf("last price: expected 159, got %v", snap.LastPrice)
	}
	for _, p := range []int{9, 21, 50} {
		if !snap.HasPeriod(p) {
			t.Fatalf("expected EMA%d with 60 candles", p)
		}
	}
	if snap.HasPeriod(100) {
		t.Fatalf("EMA100 must be skipped with 60 candles")
	}
	if !snap.Signals["price_above_ema9"] {
		t.Fatalf("rising series must close above EMA9")
	}
	if !snap.Signals["bullish_alignment"] {
		t.Fatalf("rising series must align bullish")
	}
	if snap.Candle.Close != 159 || snap.Candle.Volume != 500 {
		t.Fatalf("unexpected candle data: %+v", snap.Candle)
	}
	if snap.Synthetic {
		t.Fatalf("live series must not be flagged synthetic")
	}
}

func TestPipelineCountsSyntheticSeries(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache()
	defer mem.Close()
	store := repository.NewSnapshotStore(mem)

	source := &stubSource{series: map[string]*models.CandleSeries{
		"DOGE/USDT": risingSeries("DOGE/USDT", 30, true),
	}}
	pipeline := newTestPipeline(t, source, store, PipelineConfig{
		Symbols: []string{"DOGE/USDT"},
		Periods: []int{9, 21},
	})

	report, err := pipeline.Run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Synthetic != 1 {
		t.Fatalf("expected 1 synthetic, got %d", report.Synthetic)
	}

	snap, err := store.Get(ctx, "DOGE/USDT")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !snap.Synthetic {
		t.Fatalf("snapshot must carry the synthetic flag")
	}
}

// failingStore simulates a cache outage.
type failingStore struct{}

func (f *failingStore) Store(context.Context, *models.EmaSnapshot, time.Duration) error {
	return fmt.Errorf("%w: connection refused", domrepo.ErrCacheUnavailable)
}
func (f *failingStore) Get(context.Context, string) (*models.EmaSnapshot, error) {
	return nil, domrepo.ErrCacheUnavailable
}
func (f *failingStore) List(context.Context, []string) (map[string]*models.EmaSnapshot, error) {
	return nil, domrepo.ErrCacheUnavailable
}
func (f *failingStore) TTL(context.Context, string) (time.Duration, error) {
	return 0, domrepo.ErrCacheUnavailable
}
func (f *failingStore) Clear(context.Context) (int, error) {
	return 0, domrepo.ErrCacheUnavailable
}

func TestPipelineAbortsOnCacheOutage(t *testing.T) {
	ctx := context.Background()

	source := &stubSource{series: map[string]*models.CandleSeries{
		"BTC/USDT": risingSeries("BTC/USDT", 60, false),
		"ETH/USDT": risingSeries("ETH/USDT", 60, false),
	}}
	pipeline := newTestPipeline(t, source, &failingStore{}, PipelineConfig{
		Symbols: []string{"BTC/USDT", "ETH/USDT"},
		Periods: []int{9},
	})

	_, err := pipeline.Run(ctx)
	if !errors.Is(err, domrepo.ErrCacheUnavailable) {
		t.Fatalf("expected cache unavailable to abort the run, got %v", err)
	}
}
