package contracts

import (
	"context"
	"time"
)

// ====== Supplier interfaces ======
// Suppliers are the engine's only view of external data. Missing data
// is signalled with empty slices / nil readings, never with errors.

// CandleSupplier serves historical OHLCV bars.
type CandleSupplier interface {
	// GetCandles returns bars for [from, to] in ascending timestamp
	// order. An empty slice means no data, not an error.
	GetCandles(ctx context.Context, assetID string, tf Timeframe, from, to time.Time) ([]Candle, error)
}

// EventSupplier serves scheduled calendar events.
type EventSupplier interface {
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
}

// BiasSupplier serves external directional bias readings.
type BiasSupplier interface {
	// GetBias returns nil when no reading exists for the asset.
	GetBias(ctx context.Context, assetID string, tf Timeframe, asOf time.Time) (*BiasReading, error)
}

// SentimentSupplier serves external sentiment readings.
type SentimentSupplier interface {
	// GetSentiment returns nil when no reading exists for the asset.
	GetSentiment(ctx context.Context, assetID string, asOf time.Time) (*SentimentReading, error)
}

// AssetUniverse lists the instruments the engine evaluates.
type AssetUniverse interface {
	ActiveAssets(ctx context.Context) ([]Asset, error)
}

// ====== Repository interfaces ======

// SnapshotRepository persists snapshots and their setups atomically.
type SnapshotRepository interface {
	// Save publishes the snapshot and all setups in one transaction.
	Save(ctx context.Context, snap *Snapshot) error
	// Get returns nil when no snapshot exists for (date, label).
	Get(ctx context.Context, date time.Time, label string) (*Snapshot, error)
	Exists(ctx context.Context, date time.Time, label string) (bool, error)
	Latest(ctx context.Context, label string) (*Snapshot, error)
	// List returns snapshots in [from, to] ordered by date ascending.
	List(ctx context.Context, from, to time.Time, label string) ([]Snapshot, error)
}

// OutcomeRepository persists setup outcomes keyed by
// (snapshot_id, setup_id).
type OutcomeRepository interface {
	// Upsert inserts or updates one outcome. Returns true when a new
	// row was inserted, false when an existing row was updated.
	Upsert(ctx context.Context, o *Outcome) (inserted bool, err error)
	// Get returns nil when no outcome exists for the setup.
	Get(ctx context.Context, snapshotID, setupID string) (*Outcome, error)
	// ListBySnapshot returns all outcomes recorded for a snapshot.
	ListBySnapshot(ctx context.Context, snapshotID string) ([]Outcome, error)
}
