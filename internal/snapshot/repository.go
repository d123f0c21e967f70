package snapshot

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

// Repository persists snapshots and their setups in PostgreSQL.
type Repository struct {
	db *database.DB
}

// NewRepository creates a snapshot repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

var _ contracts.SnapshotRepository = (*Repository)(nil)

// Save publishes the snapshot and all its setups in one transaction.
// Re-publishing the same (date, label) replaces the setup rows, so the
// snapshot is always internally consistent.
func (r *Repository) Save(ctx context.Context, snap *contracts.Snapshot) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshots (id, snapshot_date, label, engine_version, generated_at, assets_total, assets_failed)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (snapshot_date, label) DO UPDATE SET
			engine_version = EXCLUDED.engine_version,
			generated_at   = EXCLUDED.generated_at,
			assets_total   = EXCLUDED.assets_total,
			assets_failed  = EXCLUDED.assets_failed
	`, snap.ID, snap.Date, snap.Label, snap.EngineVersion, snap.GeneratedAt, snap.AssetsTotal, snap.AssetsFailed)
	if err != nil {
		return fmt.Errorf("upsert snapshot row: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM snapshot_setups WHERE snapshot_id = $1`, snap.ID); err != nil {
		return fmt.Errorf("clear stale setups: %w", err)
	}

	batch := &pgx.Batch{}
	for i := range snap.Setups {
		s := &snap.Setups[i]
		rings, err := json.Marshal(s.Rings)
		if err != nil {
			return fmt.Errorf("encode rings for %s: %w", s.ID, err)
		}
		notes, err := json.Marshal(s.RingNotes)
		if err != nil {
			return fmt.Errorf("encode ring notes for %s: %w", s.ID, err)
		}
		lv, err := json.Marshal(s.Levels)
		if err != nil {
			return fmt.Errorf("encode levels for %s: %w", s.ID, err)
		}
		batch.Queue(`
			INSERT INTO snapshot_setups (
				id, snapshot_id, asset_id, symbol, asset_class, timeframe,
				profile, direction, levels, rings, ring_notes, playbook_id,
				grade, decision, block_category, watch_segment, rationale,
				no_trade_reason, stale, generated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		`,
			s.ID, s.SnapshotID, s.AssetID, s.Symbol, s.AssetClass, s.Timeframe,
			s.Profile, s.Direction, lv, rings, notes, s.PlaybookID,
			s.Grade, s.Decision, s.BlockCategory, s.WatchSegment, s.Rationale,
			s.NoTradeReason, s.Stale, s.GeneratedAt,
		)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert setup batch: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("close setup batch: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Get returns nil when no snapshot exists for (date, label).
func (r *Repository) Get(ctx context.Context, date time.Time, label string) (*contracts.Snapshot, error) {
	var snap contracts.Snapshot
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, snapshot_date, label, engine_version, generated_at, assets_total, assets_failed
		FROM snapshots
		WHERE snapshot_date = $1 AND label = $2
	`, date, label).Scan(
		&snap.ID, &snap.Date, &snap.Label, &snap.EngineVersion,
		&snap.GeneratedAt, &snap.AssetsTotal, &snap.AssetsFailed,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot %s/%s: %w", date.Format("2006-01-02"), label, err)
	}

	setups, err := r.loadSetups(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	snap.Setups = setups
	return &snap, nil
}

// Exists reports whether a snapshot row is already published.
func (r *Repository) Exists(ctx context.Context, date time.Time, label string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM snapshots WHERE snapshot_date = $1 AND label = $2)
	`, date, label).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check snapshot exists: %w", err)
	}
	return exists, nil
}

// Latest returns the most recent snapshot for the label, nil when the
// table is empty.
func (r *Repository) Latest(ctx context.Context, label string) (*contracts.Snapshot, error) {
	var date time.Time
	err := r.db.Pool.QueryRow(ctx, `
		SELECT snapshot_date FROM snapshots
		WHERE label = $1
		ORDER BY snapshot_date DESC
		LIMIT 1
	`, label).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest snapshot for %s: %w", label, err)
	}
	return r.Get(ctx, date, label)
}

// List returns snapshots (with setups) for [from, to], oldest first.
// Empty label matches both labels.
func (r *Repository) List(ctx context.Context, from, to time.Time, label string) ([]contracts.Snapshot, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, snapshot_date, label, engine_version, generated_at, assets_total, assets_failed
		FROM snapshots
		WHERE snapshot_date BETWEEN $1 AND $2
		  AND ($3 = '' OR label = $3)
		ORDER BY snapshot_date ASC, label ASC
	`, from, to, label)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []contracts.Snapshot
	for rows.Next() {
		var snap contracts.Snapshot
		if err := rows.Scan(
			&snap.ID, &snap.Date, &snap.Label, &snap.EngineVersion,
			&snap.GeneratedAt, &snap.AssetsTotal, &snap.AssetsFailed,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		setups, err := r.loadSetups(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Setups = setups
	}
	return out, nil
}

func (r *Repository) loadSetups(ctx context.Context, snapshotID string) ([]contracts.Setup, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, snapshot_id, asset_id, symbol, asset_class, timeframe,
		       profile, direction, levels, rings, ring_notes, playbook_id,
		       grade, decision, block_category, watch_segment, rationale,
		       no_trade_reason, stale, generated_at
		FROM snapshot_setups
		WHERE snapshot_id = $1
		ORDER BY symbol, profile
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("load setups for %s: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []contracts.Setup
	for rows.Next() {
		var s contracts.Setup
		var lv, rings, notes []byte
		if err := rows.Scan(
			&s.ID, &s.SnapshotID, &s.AssetID, &s.Symbol, &s.AssetClass, &s.Timeframe,
			&s.Profile, &s.Direction, &lv, &rings, &notes, &s.PlaybookID,
			&s.Grade, &s.Decision, &s.BlockCategory, &s.WatchSegment, &s.Rationale,
			&s.NoTradeReason, &s.Stale, &s.GeneratedAt,
		); err != nil {
			return nil, fmt.Errorf("scan setup row: %w", err)
		}
		if err := json.Unmarshal(lv, &s.Levels); err != nil {
			return nil, fmt.Errorf("decode levels for %s: %w", s.ID, err)
		}
		if err := json.Unmarshal(rings, &s.Rings); err != nil {
			return nil, fmt.Errorf("decode rings for %s: %w", s.ID, err)
		}
		if len(notes) > 0 {
			if err := json.Unmarshal(notes, &s.RingNotes); err != nil {
				return nil, fmt.Errorf("decode ring notes for %s: %w", s.ID, err)
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
