package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"EmaPull/internal/domain/repository"
	"EmaPull/pkg/config"
	"EmaPull/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func testConfig(baseURL, apiKey string, fallback bool) *config.Config {
	cfg := &config.Config{}
	cfg.Binance.BaseURL = baseURL
	cfg.Binance.APIKey = apiKey
	cfg.Binance.Timeout = time.Second
	cfg.Binance.SyntheticFallback = fallback
	return cfg
}

func TestFetchWithoutAPIKeyServesSynthetic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("exchange must not be called without an API key")
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL, "", true), testLogger(t))

	series, err := client.Fetch(context.Background(), "BTC/USDT", "1h", 120)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !series.Synthetic {
		t.Fatalf("series must be flagged synthetic without an API key")
	}
	if series.Len() != 120 {
		t.Fatalf("expected 120 candles, got %d", series.Len())
	}
}

func TestFetchWithAPIKeyCallsExchange(t *testing.T) {
	const body = `[
		[1700000000000,"50000.0","50100.0","49900.0","50050.0","1234.5",1700003599999,"0",0,"0","0","0"],
		[1700003600000,"50050.0","50200.0","50000.0","50150.0","2345.6",1700007199999,"0",0,"0","0","0"]
	]`

	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-MBX-APIKEY")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL, "test-key", true), testLogger(t))

	series, err := client.Fetch(context.Background(), "BTC/USDT", "1h", 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected API key header, got %q", gotKey)
	}
	if series.Synthetic {
		t.Fatalf("live exchange data must not be flagged synthetic")
	}
	if series.Len() != 2 {
		t.Fatalf("expected 2 candles, got %d", series.Len())
	}
	if series.Candles[1].Close != 50150.0 {
		t.Fatalf("unexpected close %v", series.Candles[1].Close)
	}
}

func TestFetchFallbackDisabledSurfacesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL, "test-key", false), testLogger(t))

	_, err := client.Fetch(context.Background(), "BTC/USDT", "1h", 10)
	if !errors.Is(err, repository.ErrDataSourceUnavailable) {
		t.Fatalf("expected data source unavailable, got %v", err)
	}
}
