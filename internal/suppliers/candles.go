// Package suppliers implements the engine's data interfaces on top of
// PostgreSQL. No data is never an error here: empty tables come back
// as empty slices or nil readings.
package suppliers

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/pkg/database"
)

// CandleSupplier reads OHLCV bars from the candles table.
type CandleSupplier struct {
	db *database.DB
}

// NewCandleSupplier creates a pg-backed candle supplier.
func NewCandleSupplier(db *database.DB) *CandleSupplier {
	return &CandleSupplier{db: db}
}

var _ contracts.CandleSupplier = (*CandleSupplier)(nil)

// GetCandles returns bars in [from, to] ascending.
func (s *CandleSupplier) GetCandles(ctx context.Context, assetID string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT asset_id, timeframe, ts, open, high, low, close, volume, source
		FROM candles
		WHERE asset_id = $1 AND timeframe = $2 AND ts BETWEEN $3 AND $4
		ORDER BY ts ASC
	`, assetID, tf, from, to)
	if err != nil {
		return nil, fmt.Errorf("query candles %s/%s: %w", assetID, tf, err)
	}
	defer rows.Close()

	var out []contracts.Candle
	for rows.Next() {
		var c contracts.Candle
		if err := rows.Scan(
			&c.AssetID, &c.Timeframe, &c.Timestamp,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Source,
		); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
