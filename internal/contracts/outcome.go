package contracts

import "time"

// OutcomeStatus is the terminal (or pending) result of walking a
// setup's forward candles against its levels.
type OutcomeStatus string

const (
	OutcomeHitTarget OutcomeStatus = "hit_target"
	OutcomeHitStop   OutcomeStatus = "hit_stop"
	OutcomeExpired   OutcomeStatus = "expired"
	OutcomeAmbiguous OutcomeStatus = "ambiguous"
	OutcomeStillOpen OutcomeStatus = "still_open"
	OutcomeInvalid   OutcomeStatus = "invalid"
)

// Terminal reports whether the status will never change on re-evaluation
func (s OutcomeStatus) Terminal() bool {
	switch s {
	case OutcomeHitTarget, OutcomeHitStop, OutcomeExpired, OutcomeAmbiguous, OutcomeInvalid:
		return true
	}
	return false
}

// Outcome is the persisted resolution of one setup. Unique per
// (snapshot_id, setup_id): re-runs update in place, never duplicate.
type Outcome struct {
	SnapshotID    string        `json:"snapshot_id"`
	SetupID       string        `json:"setup_id"`
	AssetID       string        `json:"asset_id"`
	Symbol        string        `json:"symbol"`
	Profile       Profile       `json:"profile"`
	Timeframe     Timeframe     `json:"timeframe"`
	Direction     Direction     `json:"direction"`
	PlaybookID    string        `json:"playbook_id"`
	Status        OutcomeStatus `json:"status"`
	BarIndex      *int          `json:"bar_index,omitempty"` // 1-based bar that resolved the setup
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	WindowBars    int           `json:"window_bars"`
	Reason        string        `json:"reason,omitempty"`
	EvaluatedAt   time.Time     `json:"evaluated_at"`
	EngineVersion string        `json:"engine_version"`
}
