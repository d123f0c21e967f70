package outcome

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/pkg/database"
)

// Repository persists outcomes in PostgreSQL, one row per
// (snapshot_id, setup_id).
type Repository struct {
	db *database.DB
}

// NewRepository creates an outcome repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.OutcomeRepository = (*Repository)(nil)

// Upsert inserts or updates the outcome. xmax = 0 distinguishes a
// fresh insert from a conflict update.
func (r *Repository) Upsert(ctx context.Context, o *contracts.Outcome) (bool, error) {
	query := `
		INSERT INTO setup_outcomes (
			snapshot_id, setup_id, asset_id, symbol, profile, timeframe,
			direction, playbook_id, status, bar_index, resolved_at,
			window_bars, reason, evaluated_at, engine_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (snapshot_id, setup_id) DO UPDATE SET
			status         = EXCLUDED.status,
			bar_index      = EXCLUDED.bar_index,
			resolved_at    = EXCLUDED.resolved_at,
			window_bars    = EXCLUDED.window_bars,
			reason         = EXCLUDED.reason,
			evaluated_at   = EXCLUDED.evaluated_at,
			engine_version = EXCLUDED.engine_version
		RETURNING (xmax = 0) AS inserted
	`

	var inserted bool
	err := r.db.Pool.QueryRow(ctx, query,
		o.SnapshotID, o.SetupID, o.AssetID, o.Symbol, o.Profile, o.Timeframe,
		o.Direction, o.PlaybookID, o.Status, o.BarIndex, o.ResolvedAt,
		o.WindowBars, o.Reason, o.EvaluatedAt, o.EngineVersion,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert outcome %s/%s: %w", o.SnapshotID, o.SetupID, err)
	}
	return inserted, nil
}

// Get returns nil when no outcome exists for the setup.
func (r *Repository) Get(ctx context.Context, snapshotID, setupID string) (*contracts.Outcome, error) {
	query := `
		SELECT snapshot_id, setup_id, asset_id, symbol, profile, timeframe,
		       direction, playbook_id, status, bar_index, resolved_at,
		       window_bars, reason, evaluated_at, engine_version
		FROM setup_outcomes
		WHERE snapshot_id = $1 AND setup_id = $2
	`

	var o contracts.Outcome
	err := r.db.Pool.QueryRow(ctx, query, snapshotID, setupID).Scan(
		&o.SnapshotID, &o.SetupID, &o.AssetID, &o.Symbol, &o.Profile, &o.Timeframe,
		&o.Direction, &o.PlaybookID, &o.Status, &o.BarIndex, &o.ResolvedAt,
		&o.WindowBars, &o.Reason, &o.EvaluatedAt, &o.EngineVersion,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get outcome %s/%s: %w", snapshotID, setupID, err)
	}
	return &o, nil
}

// ListBySnapshot returns every outcome recorded for a snapshot.
func (r *Repository) ListBySnapshot(ctx context.Context, snapshotID string) ([]contracts.Outcome, error) {
	query := `
		SELECT snapshot_id, setup_id, asset_id, symbol, profile, timeframe,
		       direction, playbook_id, status, bar_index, resolved_at,
		       window_bars, reason, evaluated_at, engine_version
		FROM setup_outcomes
		WHERE snapshot_id = $1
		ORDER BY setup_id
	`

	rows, err := r.db.Pool.Query(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes for snapshot %s: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []contracts.Outcome
	for rows.Next() {
		var o contracts.Outcome
		if err := rows.Scan(
			&o.SnapshotID, &o.SetupID, &o.AssetID, &o.Symbol, &o.Profile, &o.Timeframe,
			&o.Direction, &o.PlaybookID, &o.Status, &o.BarIndex, &o.ResolvedAt,
			&o.WindowBars, &o.Reason, &o.EvaluatedAt, &o.EngineVersion,
		); err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
