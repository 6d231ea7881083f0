package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EmaPull/internal/domain/models"
	pkgch "EmaPull/pkg/clickhouse"
)

// CandleSchema creates the archive table. ReplacingMergeTree keyed on
// (symbol, timeframe, ts) deduplicates re-fetched intervals.
var CandleSchema = []string{
	`CREATE TABLE IF NOT EXISTS ema_candles (
        ts        DateTime,
        symbol    String,
        timeframe String,
        open      Float64,
        high      Float64,
        low       Float64,
        close     Float64,
        volume    Float64,
        synthetic UInt8
    ) ENGINE = ReplacingMergeTree()
    ORDER BY (symbol, timeframe, ts)`,
}

// ClickHouseArchive stores fetched candle history for offline analysis.
type ClickHouseArchive struct {
	db    *sql.DB
	table string
}

func NewClickHouseArchive(ch *pkgch.Client) *ClickHouseArchive {
	return &ClickHouseArchive{db: ch.DB(), table: "ema_candles"}
}

// Archive inserts the whole series in chunked multi-row batches.
func (a *ClickHouseArchive) Archive(ctx context.Context, series *models.CandleSeries) error {
	if series.Len() == 0 {
		return nil
	}

	synthetic := uint8(0)
	if series.Synthetic {
		synthetic = 1
	}

	const chunkSize = 2000
	candles := series.Candles
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*9)
		for _, c := range candles[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				time.Unix(c.Timestamp, 0),
				series.Symbol,
				series.Timeframe,
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
				synthetic,
			)
		}

		q := fmt.Sprintf(
			"INSERT INTO %s (ts, symbol, timeframe, open, high, low, close, volume, synthetic) VALUES %s",
			a.table, strings.Join(values, ","),
		)
		if _, err := a.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("archive candles for %s: %w", series.Symbol, err)
		}
	}
	return nil
}
