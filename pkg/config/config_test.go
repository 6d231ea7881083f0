package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
environment: test
pipeline:
  symbols:
    - BTC/USDT
`

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Pipeline.Timeframe != "1h" {
		t.Fatalf("timeframe default: got %q", cfg.Pipeline.Timeframe)
	}
	if len(cfg.Pipeline.Periods) != 5 || cfg.Pipeline.Periods[0] != 9 {
		t.Fatalf("periods default: got %v", cfg.Pipeline.Periods)
	}
	if cfg.Pipeline.Lookback != 500 {
		t.Fatalf("lookback default: got %d", cfg.Pipeline.Lookback)
	}
	if cfg.Pipeline.TTL != 2*time.Hour {
		t.Fatalf("ttl default: got %s", cfg.Pipeline.TTL)
	}
	if cfg.Binance.BaseURL == "" {
		t.Fatalf("binance base url default missing")
	}
	if cfg.MaxPeriod() != 200 {
		t.Fatalf("max period: got %d", cfg.MaxPeriod())
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "no symbols",
			body: "environment: test\n",
			want: "symbols",
		},
		{
			name: "bad timeframe",
			body: minimalConfig + "  timeframe: 2h\n",
			want: "timeframe",
		},
		{
			name: "lookback below largest period",
			body: minimalConfig + "  periods: [9, 21]\n  lookback: 20\n",
			want: "lookback",
		},
		{
			name: "negative period",
			body: minimalConfig + "  periods: [9, -5]\n",
			want: "periods",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("SYMBOLS", "SOL/USDT,DOGE/USDT")
	t.Setenv("REDIS_DB", "3")

	cfg, err := LoadWithEnv(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(cfg.Pipeline.Symbols) != 2 || cfg.Pipeline.Symbols[0] != "SOL/USDT" {
		t.Fatalf("symbols override: got %v", cfg.Pipeline.Symbols)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("redis db override: got %d", cfg.Redis.DB)
	}
}
