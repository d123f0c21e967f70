package contracts

import (
	"fmt"
	"time"
)

// Snapshot labels. 하루에 라벨별로 스냅샷 1개.
const (
	LabelIntraday = "intraday"
	LabelSwing    = "swing"
)

// ValidLabel reports whether s is a known snapshot label
func ValidLabel(s string) bool {
	return s == LabelIntraday || s == LabelSwing
}

// SnapshotKey identifies a snapshot: one per (trading date, label).
type SnapshotKey struct {
	Date  time.Time
	Label string
}

// String renders the canonical lock/cache key, e.g. "2026-08-31|swing"
func (k SnapshotKey) String() string {
	return fmt.Sprintf("%s|%s", k.Date.Format("2006-01-02"), k.Label)
}

// Snapshot is one published evaluation of the whole active universe.
// Publication is atomic: a snapshot either exists with all its setups
// or not at all.
type Snapshot struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	Label         string    `json:"label"`
	EngineVersion string    `json:"engine_version"`
	GeneratedAt   time.Time `json:"generated_at"`
	Setups        []Setup   `json:"setups"`
	AssetsTotal   int       `json:"assets_total"`
	AssetsFailed  int       `json:"assets_failed"`
}

// Key returns the snapshot's (date, label) identity
func (s *Snapshot) Key() SnapshotKey {
	return SnapshotKey{Date: s.Date, Label: s.Label}
}
