package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"EmaPull/internal/service/binance"
	"EmaPull/internal/usecase"
	"EmaPull/pkg/logger"
)

// Updater listens to the exchange kline stream and recomputes a
// symbol's snapshot whenever one of its candles closes, keeping the
// cache fresher than the interval ticker alone would.
type Updater struct {
	url            string
	timeframe      string
	symbols        []string
	reconnectDelay time.Duration
	pingInterval   time.Duration

	pipeline *usecase.Pipeline
	log      *logger.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

func NewUpdater(
	url, timeframe string,
	symbols []string,
	reconnectDelay, pingInterval time.Duration,
	pipeline *usecase.Pipeline,
	log *logger.Logger,
) *Updater {
	return &Updater{
		url:            url,
		timeframe:      timeframe,
		symbols:        symbols,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		pipeline:       pipeline,
		log:            log,
	}
}

// streamURL builds the combined stream endpoint subscribing every
// configured symbol to its kline channel.
func (u *Updater) streamURL() string {
	streams := make([]string, len(u.symbols))
	for i, s := range u.symbols {
		streams[i] = fmt.Sprintf("%s@kline_%s", strings.ToLower(binance.ExchangeSymbol(s)), u.timeframe)
	}
	return fmt.Sprintf("%s/stream?streams=%s", strings.TrimRight(u.url, "/"), strings.Join(streams, "/"))
}

func (u *Updater) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.streamURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("stream connect: %w", err)
	}
	u.mu.Lock()
	u.conn = conn
	u.mu.Unlock()
	u.log.Info("kline stream connected", logger.Int("symbols", len(u.symbols)))
	return conn, nil
}

type klinePayload struct {
	Data struct {
		Symbol string `json:"s"`
		Kline  struct {
			CloseTime int64  `json:"T"`
			Close     string `json:"c"`
			Closed    bool   `json:"x"`
		} `json:"k"`
	} `json:"data"`
}

// Run connects and processes kline events until ctx is done,
// reconnecting after read failures.
func (u *Updater) Run(ctx context.Context) {
	for {
		conn, err := u.connect(ctx)
		if err != nil {
			u.log.Warn("stream connect failed", logger.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(u.reconnectDelay):
			}
			continue
		}

		u.readLoop(ctx, conn)
		_ = u.Close()

		select {
		case <-ctx.Done():
			return
		case <-time.After(u.reconnectDelay):
		}
	}
}

func (u *Updater) readLoop(ctx context.Context, conn *websocket.Conn) {
	pingCtx, cancelPing := context.WithCancel(ctx)
	defer cancelPing()
	go u.pingLoop(pingCtx, conn)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				u.log.Warn("stream read failed", logger.Error(err))
			}
			return
		}

		var payload klinePayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}
		if !payload.Data.Kline.Closed {
			continue
		}

		symbol := u.pairFor(payload.Data.Symbol)
		if symbol == "" {
			continue
		}
		if _, err := u.pipeline.RunSymbol(ctx, symbol); err != nil {
			u.log.Error("stream triggered update failed",
				logger.String("symbol", symbol),
				logger.Error(err),
			)
			continue
		}
		u.log.Debug("snapshot refreshed from stream", logger.String("symbol", symbol))
	}
}

func (u *Updater) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(u.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

// pairFor maps an exchange symbol back to the configured pair notation.
func (u *Updater) pairFor(exchangeSymbol string) string {
	for _, s := range u.symbols {
		if binance.ExchangeSymbol(s) == strings.ToUpper(exchangeSymbol) {
			return s
		}
	}
	return ""
}

// Close shuts the current connection down. Safe to call while the read
// loop is still draining it; the loop exits on the resulting read error.
func (u *Updater) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.conn == nil {
		return nil
	}
	err := u.conn.Close()
	u.conn = nil
	return err
}
