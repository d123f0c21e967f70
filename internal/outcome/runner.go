package outcome

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/playbook"
	"github.com/wonny/argus/v1/pkg/config"
	"github.com/wonny/argus/v1/pkg/logger"
)

// Skip reason keys surfaced in the batch summary.
const (
	skipNotTradeable     = "not_tradeable"
	skipAlreadyClosed    = "already_closed"
	skipPlaybookMismatch = "playbook_mismatch"
	skipWindowMismatch   = "window_config_mismatch"
	skipFilteredOut      = "filtered_out"
)

// Runner re-evaluates persisted setups against forward candles and
// upserts their outcomes. Idempotent: re-running a batch never creates
// duplicate rows and never rewrites a terminal status.
type Runner struct {
	snapshots contracts.SnapshotRepository
	outcomes  contracts.OutcomeRepository
	candles   contracts.CandleSupplier
	playbooks *playbook.Registry
	windows   config.OutcomeWindowConfig
	version   string
	log       *logger.Logger
}

// NewRunner wires a batch runner.
func NewRunner(
	snapshots contracts.SnapshotRepository,
	outcomes contracts.OutcomeRepository,
	candles contracts.CandleSupplier,
	playbooks *playbook.Registry,
	windows config.OutcomeWindowConfig,
	version string,
	log *logger.Logger,
) *Runner {
	return &Runner{
		snapshots: snapshots,
		outcomes:  outcomes,
		candles:   candles,
		playbooks: playbooks,
		windows:   windows,
		version:   version,
		log:       log,
	}
}

// BatchParams selects which setups one run covers.
type BatchParams struct {
	From  time.Time
	To    time.Time
	Label string // empty = both labels
	// Limit caps how many setups one run touches. 0 = unlimited.
	Limit int
	// AssetFilter restricts the run to the named asset IDs (empty = all).
	AssetFilter []string
	// PlaybookFilter keeps setups whose playbook id matches exactly or
	// shares the family prefix, e.g. "gold" matches "gold-v1".
	PlaybookFilter string
	// DryRun computes everything but persists nothing.
	DryRun bool
	// Force re-resolves setups whose outcome is already terminal.
	Force bool
}

func (p BatchParams) matches(s *contracts.Setup) bool {
	if len(p.AssetFilter) > 0 {
		found := false
		for _, id := range p.AssetFilter {
			if id == s.AssetID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if p.PlaybookFilter != "" {
		if s.PlaybookID != p.PlaybookFilter &&
			!strings.HasPrefix(s.PlaybookID, p.PlaybookFilter+"-") {
			return false
		}
	}
	return true
}

// BatchSummary is the per-run accounting.
type BatchSummary struct {
	Snapshots int
	Setups    int
	Evaluated int
	Inserted  int
	Updated   int
	Unchanged int
	Errors    int

	Skipped  map[string]int
	ByStatus map[contracts.OutcomeStatus]int
}

// Run walks every snapshot in the window and resolves its setups.
// Per-setup failures are counted and logged, never fatal to the batch.
func (r *Runner) Run(ctx context.Context, p BatchParams) (*BatchSummary, error) {
	sum := &BatchSummary{
		Skipped:  make(map[string]int),
		ByStatus: make(map[contracts.OutcomeStatus]int),
	}

	snaps, err := r.snapshots.List(ctx, p.From, p.To, p.Label)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	sum.Snapshots = len(snaps)

walk:
	for i := range snaps {
		snap := &snaps[i]
		for j := range snap.Setups {
			if err := ctx.Err(); err != nil {
				return sum, err
			}
			if p.Limit > 0 && sum.Setups >= p.Limit {
				break walk
			}
			sum.Setups++
			if err := r.runSetup(ctx, snap, &snap.Setups[j], p, sum); err != nil {
				sum.Errors++
				r.log.WithError(err).WithFields(map[string]interface{}{
					"snapshot_id": snap.ID,
					"setup_id":    snap.Setups[j].ID,
				}).Warn("⚠️ outcome evaluation failed for setup")
			}
		}
	}

	r.log.WithFields(map[string]interface{}{
		"snapshots": sum.Snapshots,
		"setups":    sum.Setups,
		"evaluated": sum.Evaluated,
		"inserted":  sum.Inserted,
		"updated":   sum.Updated,
		"unchanged": sum.Unchanged,
		"errors":    sum.Errors,
		"dry_run":   p.DryRun,
	}).Info("Outcome batch finished")
	return sum, nil
}

func (r *Runner) runSetup(ctx context.Context, snap *contracts.Snapshot, s *contracts.Setup, p BatchParams, sum *BatchSummary) error {
	if !p.matches(s) {
		sum.Skipped[skipFilteredOut]++
		return nil
	}

	// only decided, directional setups get outcomes
	if s.Decision != contracts.DecisionTrade ||
		(s.Direction != contracts.DirectionLong && s.Direction != contracts.DirectionShort) {
		sum.Skipped[skipNotTradeable]++
		return nil
	}

	// family guard: a setup graded under the wrong playbook must not be
	// silently scored
	if err := r.playbooks.CheckCompatible(s.PlaybookID, s.AssetClass); err != nil {
		sum.Skipped[skipPlaybookMismatch]++
		return err
	}

	existing, err := r.outcomes.Get(ctx, s.SnapshotID, s.ID)
	if err != nil {
		return fmt.Errorf("load existing outcome: %w", err)
	}
	if existing != nil && existing.Status.Terminal() && !p.Force {
		sum.Skipped[skipAlreadyClosed]++
		return nil
	}

	bars, tf, err := r.windowFor(s.Profile)
	if err != nil {
		sum.Skipped[skipWindowMismatch]++
		return err
	}
	if s.Timeframe != tf {
		sum.Skipped[skipWindowMismatch]++
		return fmt.Errorf("setup timeframe %s does not match configured %s window %s", s.Timeframe, s.Profile, tf)
	}

	// fetch a little past the window so expiry vs still-open is decided
	// on real data
	from := s.GeneratedAt
	to := from.Add(time.Duration(bars+2) * tf.Duration())
	candles, err := r.candles.GetCandles(ctx, s.AssetID, tf, from, to)
	if err != nil {
		return fmt.Errorf("load forward candles: %w", err)
	}

	res := Resolve(s.Direction, s.Levels, candles, bars)
	sum.Evaluated++
	sum.ByStatus[res.Status]++

	o := &contracts.Outcome{
		SnapshotID:    s.SnapshotID,
		SetupID:       s.ID,
		AssetID:       s.AssetID,
		Symbol:        s.Symbol,
		Profile:       s.Profile,
		Timeframe:     s.Timeframe,
		Direction:     s.Direction,
		PlaybookID:    s.PlaybookID,
		Status:        res.Status,
		BarIndex:      res.BarIndex,
		ResolvedAt:    res.ResolvedAt,
		WindowBars:    bars,
		Reason:        res.Reason,
		EvaluatedAt:   time.Now().UTC(),
		EngineVersion: r.version,
	}

	if existing != nil && existing.Status == res.Status {
		sum.Unchanged++
		return nil
	}
	if p.DryRun {
		if existing == nil {
			sum.Inserted++
		} else {
			sum.Updated++
		}
		return nil
	}

	inserted, err := r.outcomes.Upsert(ctx, o)
	if err != nil {
		return fmt.Errorf("upsert outcome: %w", err)
	}
	if inserted {
		sum.Inserted++
	} else {
		sum.Updated++
	}
	return nil
}

// windowFor maps a profile to its configured (bars, timeframe) pair.
func (r *Runner) windowFor(profile contracts.Profile) (int, contracts.Timeframe, error) {
	w := r.windows
	switch profile {
	case contracts.ProfileScalp:
		return w.ScalpBars, contracts.Timeframe(w.ScalpTimeframe), nil
	case contracts.ProfileIntraday:
		return w.IntradayBars, contracts.Timeframe(w.IntradayTimeframe), nil
	case contracts.ProfileSwing:
		return w.SwingBars, contracts.Timeframe(w.SwingTimeframe), nil
	case contracts.ProfilePosition:
		return w.PositionBars, contracts.Timeframe(w.PositionTimeframe), nil
	}
	return 0, "", fmt.Errorf("no outcome window configured for profile %q", profile)
}
