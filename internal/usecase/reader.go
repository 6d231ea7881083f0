package usecase

import (
	"context"
	"fmt"
	"time"

	"EmaPull/internal/domain/models"
	domrepo "EmaPull/internal/domain/repository"
)

// SnapshotReader provides read access to cached snapshots.
type SnapshotReader struct {
	store   domrepo.SnapshotStore
	symbols []string
}

func NewSnapshotReader(store domrepo.SnapshotStore, symbols []string) *SnapshotReader {
	return &SnapshotReader{store: store, symbols: symbols}
}

type GetSnapshotParams struct {
	Symbol string
}

// GetSnapshot returns the cached snapshot for one symbol. A missing or
// expired snapshot surfaces as ErrSnapshotNotFound.
func (r *SnapshotReader) GetSnapshot(ctx context.Context, p GetSnapshotParams) (*models.EmaSnapshot, error) {
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	return r.store.Get(ctx, p.Symbol)
}

type ListSnapshotsResult struct {
	Count     int
	Snapshots map[string]*models.EmaSnapshot
}

// ListSnapshots returns every configured symbol that currently has a
// cached snapshot. Absent symbols are silently omitted.
func (r *SnapshotReader) ListSnapshots(ctx context.Context) (*ListSnapshotsResult, error) {
	snapshots, err := r.store.List(ctx, r.symbols)
	if err != nil {
		return nil, err
	}
	return &ListSnapshotsResult{Count: len(snapshots), Snapshots: snapshots}, nil
}

// SnapshotTTL reports the remaining cache lifetime for one symbol.
func (r *SnapshotReader) SnapshotTTL(ctx context.Context, symbol string) (time.Duration, error) {
	return r.store.TTL(ctx, symbol)
}

// Symbols returns the configured symbol list.
func (r *SnapshotReader) Symbols() []string {
	return r.symbols
}
