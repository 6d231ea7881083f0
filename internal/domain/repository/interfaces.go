package repository

import (
	"context"
	"errors"
	"time"

	"EmaPull/internal/domain/models"
)

// ErrSnapshotNotFound is returned when no cached snapshot exists for a
// symbol, whether it was never written or its TTL expired.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// CandleSource fetches historical candles for one symbol.
type CandleSource interface {
	Fetch(ctx context.Context, symbol, timeframe string, limit int) (*models.CandleSeries, error)
}

// SnapshotStore persists and retrieves computed EMA snapshots.
type SnapshotStore interface {
	Store(ctx context.Context, snapshot *models.EmaSnapshot, ttl time.Duration) error
	Get(ctx context.Context, symbol string) (*models.EmaSnapshot, error)
	List(ctx context.Context, symbols []string) (map[string]*models.EmaSnapshot, error)
	TTL(ctx context.Context, symbol string) (time.Duration, error)
	Clear(ctx context.Context) (int, error)
}

// Publisher forwards finished snapshots to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, snapshot *models.EmaSnapshot) error
}

// CandleArchive stores raw candle history for offline analysis.
type CandleArchive interface {
	Archive(ctx context.Context, series *models.CandleSeries) error
}
