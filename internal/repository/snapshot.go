package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"EmaPull/internal/domain/models"
	domain "EmaPull/internal/domain/repository"
	"EmaPull/pkg/cache"
)

// SnapshotStore caches EMA snapshots under a per-symbol key family.
// The main key holds the full snapshot, the sub keys expose individual
// pieces so consumers can read one EMA or the signal set without
// deserializing everything. All keys for one symbol are written in a
// single atomic batch with a shared TTL.
type SnapshotStore struct {
	cache cache.Service
}

func NewSnapshotStore(c cache.Service) *SnapshotStore {
	return &SnapshotStore{cache: c}
}

// Store writes the snapshot and all of its sub keys atomically.
func (s *SnapshotStore) Store(ctx context.Context, snapshot *models.EmaSnapshot, ttl time.Duration) error {
	base := models.CacheSymbol(snapshot.Symbol)

	values := make(map[string]interface{}, len(snapshot.Emas)+4)

	full, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("%w: snapshot for %s: %v", domain.ErrSerialization, snapshot.Symbol, err)
	}
	values[base] = json.RawMessage(full)

	for period, point := range snapshot.Emas {
		raw, err := json.Marshal(point)
		if err != nil {
			return fmt.Errorf("%w: ema_%d for %s: %v", domain.ErrSerialization, period, snapshot.Symbol, err)
		}
		values[fmt.Sprintf("%s:ema_%d", base, period)] = json.RawMessage(raw)
	}

	signals, err := json.Marshal(snapshot.Signals)
	if err != nil {
		return fmt.Errorf("%w: signals for %s: %v", domain.ErrSerialization, snapshot.Symbol, err)
	}
	values[base+":signals"] = json.RawMessage(signals)
	values[base+":last_price"] = snapshot.LastPrice
	values[base+":last_update"] = snapshot.Timestamp

	if err := s.cache.MSet(ctx, values, ttl); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return nil
}

// Get returns the cached snapshot for symbol, in pair or cache key
// notation. An expired or never written snapshot is a not found error.
func (s *SnapshotStore) Get(ctx context.Context, symbol string) (*models.EmaSnapshot, error) {
	var snapshot models.EmaSnapshot
	err := s.cache.Get(ctx, models.CacheSymbol(symbol), &snapshot)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return &snapshot, nil
}

// List returns the snapshots present in cache for the given symbols.
// Symbols without a snapshot are simply absent from the result.
func (s *SnapshotStore) List(ctx context.Context, symbols []string) (map[string]*models.EmaSnapshot, error) {
	keys := make([]string, len(symbols))
	for i, sym := range symbols {
		keys[i] = models.CacheSymbol(sym)
	}

	found, err := cache.MGetTyped[models.EmaSnapshot](ctx, s.cache, keys...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	out := make(map[string]*models.EmaSnapshot, len(found))
	for key, snap := range found {
		snap := snap
		out[models.PairSymbol(key)] = &snap
	}
	return out, nil
}

// TTL returns the remaining lifetime of the snapshot for symbol.
func (s *SnapshotStore) TTL(ctx context.Context, symbol string) (time.Duration, error) {
	ttl, err := s.cache.TTL(ctx, models.CacheSymbol(symbol))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return ttl, nil
}

// Clear deletes every snapshot key and returns how many were removed.
func (s *SnapshotStore) Clear(ctx context.Context) (int, error) {
	keys, err := s.cache.Keys(ctx, "*")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}
	return len(keys), nil
}

