package suppliers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/pkg/database"
)

// ====== Asset universe ======

// AssetUniverse lists active instruments from the assets table.
type AssetUniverse struct {
	db *database.DB
}

func NewAssetUniverse(db *database.DB) *AssetUniverse {
	return &AssetUniverse{db: db}
}

var _ contracts.AssetUniverse = (*AssetUniverse)(nil)

func (s *AssetUniverse) ActiveAssets(ctx context.Context) ([]contracts.Asset, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, symbol, name, asset_class, active
		FROM assets
		WHERE active = TRUE
		ORDER BY symbol
	`)
	if err != nil {
		return nil, fmt.Errorf("query active assets: %w", err)
	}
	defer rows.Close()

	var out []contracts.Asset
	for rows.Next() {
		var a contracts.Asset
		if err := rows.Scan(&a.ID, &a.Symbol, &a.Name, &a.Class, &a.Active); err != nil {
			return nil, fmt.Errorf("scan asset row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ====== Events ======

// EventSupplier reads the scheduled event calendar.
type EventSupplier struct {
	db *database.DB
}

func NewEventSupplier(db *database.DB) *EventSupplier {
	return &EventSupplier{db: db}
}

var _ contracts.EventSupplier = (*EventSupplier)(nil)

func (s *EventSupplier) GetEvents(ctx context.Context, from, to time.Time) ([]contracts.Event, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, title, category, impact, scheduled_at, country, symbols
		FROM calendar_events
		WHERE scheduled_at BETWEEN $1 AND $2
		ORDER BY scheduled_at ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	var out []contracts.Event
	for rows.Next() {
		var e contracts.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Category, &e.Impact, &e.ScheduledAt, &e.Country, &e.Symbols); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ====== Bias ======

// BiasSupplier reads the most recent external bias reading per asset.
type BiasSupplier struct {
	db *database.DB
}

func NewBiasSupplier(db *database.DB) *BiasSupplier {
	return &BiasSupplier{db: db}
}

var _ contracts.BiasSupplier = (*BiasSupplier)(nil)

// GetBias returns the latest reading at or before asOf, nil when the
// asset has none.
func (s *BiasSupplier) GetBias(ctx context.Context, assetID string, tf contracts.Timeframe, asOf time.Time) (*contracts.BiasReading, error) {
	var r contracts.BiasReading
	err := s.db.Pool.QueryRow(ctx, `
		SELECT asset_id, stance, confidence, magnitude, as_of
		FROM bias_readings
		WHERE asset_id = $1 AND timeframe = $2 AND as_of <= $3
		ORDER BY as_of DESC
		LIMIT 1
	`, assetID, tf, asOf).Scan(&r.AssetID, &r.Stance, &r.Confidence, &r.Magnitude, &r.AsOf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query bias for %s: %w", assetID, err)
	}
	return &r, nil
}

// ====== Sentiment ======

// SentimentSupplier reads the most recent sentiment reading per asset.
type SentimentSupplier struct {
	db *database.DB
}

func NewSentimentSupplier(db *database.DB) *SentimentSupplier {
	return &SentimentSupplier{db: db}
}

var _ contracts.SentimentSupplier = (*SentimentSupplier)(nil)

// GetSentiment returns the latest reading at or before asOf, nil when
// the asset has none.
func (s *SentimentSupplier) GetSentiment(ctx context.Context, assetID string, asOf time.Time) (*contracts.SentimentReading, error) {
	var r contracts.SentimentReading
	var components []byte
	err := s.db.Pool.QueryRow(ctx, `
		SELECT asset_id, score, components, sources, as_of
		FROM sentiment_readings
		WHERE asset_id = $1 AND as_of <= $2
		ORDER BY as_of DESC
		LIMIT 1
	`, assetID, asOf).Scan(&r.AssetID, &r.Score, &components, &r.Sources, &r.AsOf)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query sentiment for %s: %w", assetID, err)
	}
	if len(components) > 0 {
		if err := json.Unmarshal(components, &r.Components); err != nil {
			return nil, fmt.Errorf("decode sentiment components for %s: %w", assetID, err)
		}
	}
	return &r, nil
}
