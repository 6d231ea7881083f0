package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"EmaPull/internal/domain/models"
	"EmaPull/internal/domain/repository"
	"EmaPull/internal/service/ratelimit"
	"EmaPull/pkg/config"
	httpclient "EmaPull/pkg/http"
	"EmaPull/pkg/logger"
)

const klinesPath = "/api/v3/klines"

// Client fetches historical klines from the Binance REST API. Without
// an API key it skips the exchange entirely and serves generated
// series; when a fetch fails and the synthetic fallback is enabled it
// likewise returns a generated series flagged as synthetic instead of
// an error.
type Client struct {
	http      *httpclient.Client
	baseURL   string
	apiKey    string
	fallback  bool
	limiter   *ratelimit.Limiter
	rps       float64
	generator *Generator
	log       *logger.Logger
}

// NewClient builds a candle source from the Binance section of the config.
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return &Client{
		http:      httpclient.NewClient(httpclient.WithTimeout(cfg.Binance.Timeout)),
		baseURL:   strings.TrimRight(cfg.Binance.BaseURL, "/"),
		apiKey:    cfg.Binance.APIKey,
		fallback:  cfg.Binance.SyntheticFallback,
		limiter:   ratelimit.New(),
		rps:       cfg.Binance.RequestsPerSec,
		generator: NewGenerator(time.Now().UnixNano()),
		log:       log,
	}
}

// Fetch returns up to limit candles for symbol on the given timeframe.
// The symbol uses pair notation ("BTC/USDT"); the exchange form is
// derived internally.
func (c *Client) Fetch(ctx context.Context, symbol, timeframe string, limit int) (*models.CandleSeries, error) {
	if c.apiKey == "" && c.fallback {
		c.log.Warn("no exchange API key configured, generating synthetic series",
			logger.String("symbol", symbol),
		)
		return c.generator.Series(symbol, timeframe, limit), nil
	}

	series, err := c.fetchKlines(ctx, symbol, timeframe, limit)
	if err == nil {
		return series, nil
	}

	if !c.fallback {
		return nil, fmt.Errorf("%w: %v", repository.ErrDataSourceUnavailable, err)
	}

	c.log.Warn("exchange fetch failed, generating synthetic series",
		logger.String("symbol", symbol),
		logger.Error(err),
	)
	return c.generator.Series(symbol, timeframe, limit), nil
}

func (c *Client) fetchKlines(ctx context.Context, symbol, timeframe string, limit int) (*models.CandleSeries, error) {
	if c.rps > 0 {
		if err := c.limiter.Wait(ctx, "klines", c.rps, c.rps); err != nil {
			return nil, err
		}
	}

	headers := map[string]string{}
	if c.apiKey != "" {
		headers["X-MBX-APIKEY"] = c.apiKey
	}

	var raw [][]json.RawMessage
	err := c.http.SendAndParse(ctx, &httpclient.RequestOptions{
		Method: httpclient.MethodGet,
		URL:    c.baseURL + klinesPath,
		QueryParams: map[string][]string{
			"symbol":   {ExchangeSymbol(symbol)},
			"interval": {timeframe},
			"limit":    {strconv.Itoa(limit)},
		},
		Headers: headers,
	}, &raw)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty kline response for %s", symbol)
	}

	series := &models.CandleSeries{
		Symbol:    symbol,
		Timeframe: timeframe,
		Candles:   make([]models.Candle, 0, len(raw)),
	}
	for i, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("kline %d for %s: %w", i, symbol, err)
		}
		series.Candles = append(series.Candles, candle)
	}
	if err := series.Validate(); err != nil {
		return nil, err
	}
	return series, nil
}

// parseKline decodes one kline row. Binance encodes rows as arrays of
// mixed types, millisecond open time first and the OHLCV fields as
// decimal strings.
func parseKline(row []json.RawMessage) (models.Candle, error) {
	if len(row) < 6 {
		return models.Candle{}, fmt.Errorf("expected at least 6 fields, got %d", len(row))
	}

	var openTimeMs int64
	if err := json.Unmarshal(row[0], &openTimeMs); err != nil {
		return models.Candle{}, fmt.Errorf("open time: %w", err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return models.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = v
	}

	return models.Candle{
		Timestamp: openTimeMs / 1000,
		Open:      fields[0],
		High:      fields[1],
		Low:       fields[2],
		Close:     fields[3],
		Volume:    fields[4],
	}, nil
}

// ExchangeSymbol converts pair notation to the exchange form,
// "BTC/USDT" to "BTCUSDT".
func ExchangeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(symbol, "/", ""))
}
