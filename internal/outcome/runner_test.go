package outcome

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/playbook"
	"github.com/wonny/argus/v1/pkg/config"
	"github.com/wonny/argus/v1/pkg/logger"
)

// ====== in-memory fakes ======

type fakeSnapshotRepo struct {
	snaps []contracts.Snapshot
}

func (f *fakeSnapshotRepo) Save(ctx context.Context, s *contracts.Snapshot) error { return nil }
func (f *fakeSnapshotRepo) Get(ctx context.Context, date time.Time, label string) (*contracts.Snapshot, error) {
	return nil, nil
}
func (f *fakeSnapshotRepo) Exists(ctx context.Context, date time.Time, label string) (bool, error) {
	return false, nil
}
func (f *fakeSnapshotRepo) Latest(ctx context.Context, label string) (*contracts.Snapshot, error) {
	return nil, nil
}
func (f *fakeSnapshotRepo) List(ctx context.Context, from, to time.Time, label string) ([]contracts.Snapshot, error) {
	return f.snaps, nil
}

type fakeOutcomeRepo struct {
	rows map[string]*contracts.Outcome
}

func newFakeOutcomeRepo() *fakeOutcomeRepo {
	return &fakeOutcomeRepo{rows: make(map[string]*contracts.Outcome)}
}

func (f *fakeOutcomeRepo) Upsert(ctx context.Context, o *contracts.Outcome) (bool, error) {
	key := o.SnapshotID + "|" + o.SetupID
	_, existed := f.rows[key]
	cp := *o
	f.rows[key] = &cp
	return !existed, nil
}

func (f *fakeOutcomeRepo) Get(ctx context.Context, snapshotID, setupID string) (*contracts.Outcome, error) {
	o, ok := f.rows[snapshotID+"|"+setupID]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOutcomeRepo) ListBySnapshot(ctx context.Context, snapshotID string) ([]contracts.Outcome, error) {
	var out []contracts.Outcome
	for _, o := range f.rows {
		if o.SnapshotID == snapshotID {
			out = append(out, *o)
		}
	}
	return out, nil
}

type fakeCandleSupplier struct {
	candles map[string][]contracts.Candle // keyed by asset id
}

func (f *fakeCandleSupplier) GetCandles(ctx context.Context, assetID string, tf contracts.Timeframe, from, to time.Time) ([]contracts.Candle, error) {
	return f.candles[assetID], nil
}

// ====== fixtures ======

func testWindows() config.OutcomeWindowConfig {
	return config.OutcomeWindowConfig{
		ScalpBars: 16, IntradayBars: 12, SwingBars: 10, PositionBars: 30,
		ScalpTimeframe: "15m", IntradayTimeframe: "1H",
		SwingTimeframe: "1D", PositionTimeframe: "1D",
	}
}

func tradeSetup(id string) contracts.Setup {
	return contracts.Setup{
		ID:         id,
		SnapshotID: "snap-1",
		AssetID:    "gold-1",
		Symbol:     "XAUUSD",
		AssetClass: contracts.ClassGold,
		Timeframe:  contracts.Timeframe1D,
		Profile:    contracts.ProfileSwing,
		Direction:  contracts.DirectionLong,
		PlaybookID: playbook.IDGold,
		Decision:   contracts.DecisionTrade,
		Levels: contracts.Levels{
			EntryLow: 98, EntryHigh: 102, StopLoss: 90, TakeProfit: 112, RiskReward: 2.0,
		},
		GeneratedAt: time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC),
	}
}

func forwardCandles(values ...[4]float64) []contracts.Candle {
	base := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	out := make([]contracts.Candle, len(values))
	for i, v := range values {
		out[i] = contracts.Candle{
			Timestamp: base.AddDate(0, 0, i),
			Open:      v[0], High: v[1], Low: v[2], Close: v[3],
		}
	}
	return out
}

func newTestRunner(snaps []contracts.Snapshot, outcomes *fakeOutcomeRepo, candles map[string][]contracts.Candle) *Runner {
	return NewRunner(
		&fakeSnapshotRepo{snaps: snaps},
		outcomes,
		&fakeCandleSupplier{candles: candles},
		playbook.NewRegistry(),
		testWindows(),
		"0.3.0-test",
		logger.NewNop(),
	)
}

// ====== tests ======

func TestRunResolvesAndInserts(t *testing.T) {
	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{tradeSetup("s1")}}
	repo := newFakeOutcomeRepo()
	r := newTestRunner([]contracts.Snapshot{snap}, repo, map[string][]contracts.Candle{
		"gold-1": forwardCandles(
			[4]float64{100, 104, 97, 103},
			[4]float64{103, 113, 102, 111}, // bar 2 tags the target
		),
	})

	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Evaluated)
	assert.Equal(t, 1, sum.Inserted)
	assert.Equal(t, 1, sum.ByStatus[contracts.OutcomeHitTarget])

	stored, err := repo.Get(context.Background(), "snap-1", "s1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, contracts.OutcomeHitTarget, stored.Status)
	require.NotNil(t, stored.BarIndex)
	assert.Equal(t, 2, *stored.BarIndex)
	assert.Equal(t, 10, stored.WindowBars)
	assert.Equal(t, "0.3.0-test", stored.EngineVersion)
}

func TestRunSkipsNonTradeable(t *testing.T) {
	watch := tradeSetup("s1")
	watch.Decision = contracts.DecisionWatch
	neutral := tradeSetup("s2")
	neutral.Direction = contracts.DirectionNeutral

	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{watch, neutral}}
	repo := newFakeOutcomeRepo()
	r := newTestRunner([]contracts.Snapshot{snap}, repo, nil)

	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Evaluated)
	assert.Equal(t, 2, sum.Skipped[skipNotTradeable])
	assert.Empty(t, repo.rows)
}

func TestRunSkipsTerminalUnlessForced(t *testing.T) {
	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{tradeSetup("s1")}}
	repo := newFakeOutcomeRepo()
	repo.rows["snap-1|s1"] = &contracts.Outcome{
		SnapshotID: "snap-1", SetupID: "s1", Status: contracts.OutcomeHitStop,
	}
	candles := map[string][]contracts.Candle{
		"gold-1": forwardCandles([4]float64{100, 113, 99, 112}),
	}

	r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped[skipAlreadyClosed])
	assert.Equal(t, 0, sum.Evaluated)
	// stored row untouched
	assert.Equal(t, contracts.OutcomeHitStop, repo.rows["snap-1|s1"].Status)

	sum, err = r.Run(context.Background(), BatchParams{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Evaluated)
	assert.Equal(t, 1, sum.Updated)
	assert.Equal(t, contracts.OutcomeHitTarget, repo.rows["snap-1|s1"].Status)
}

func TestRunStillOpenReevaluatesToTerminal(t *testing.T) {
	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{tradeSetup("s1")}}
	repo := newFakeOutcomeRepo()
	repo.rows["snap-1|s1"] = &contracts.Outcome{
		SnapshotID: "snap-1", SetupID: "s1", Status: contracts.OutcomeStillOpen,
	}
	candles := map[string][]contracts.Candle{
		"gold-1": forwardCandles([4]float64{100, 113, 99, 112}),
	}

	r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Evaluated)
	assert.Equal(t, 1, sum.Updated)
	assert.Equal(t, contracts.OutcomeHitTarget, repo.rows["snap-1|s1"].Status)
}

func TestRunUnchangedWhenStatusStable(t *testing.T) {
	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{tradeSetup("s1")}}
	repo := newFakeOutcomeRepo()
	repo.rows["snap-1|s1"] = &contracts.Outcome{
		SnapshotID: "snap-1", SetupID: "s1", Status: contracts.OutcomeStillOpen,
	}
	candles := map[string][]contracts.Candle{
		"gold-1": forwardCandles([4]float64{100, 104, 97, 103}), // partial window, no hit
	}

	r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Unchanged)
	assert.Equal(t, 0, sum.Inserted)
	assert.Equal(t, 0, sum.Updated)
}

func TestRunPlaybookMismatchCountsAndErrors(t *testing.T) {
	bad := tradeSetup("s1")
	bad.PlaybookID = playbook.IDCrypto // crypto chain on a gold asset

	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{bad}}
	repo := newFakeOutcomeRepo()
	r := newTestRunner([]contracts.Snapshot{snap}, repo, nil)

	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped[skipPlaybookMismatch])
	assert.Equal(t, 1, sum.Errors)
	assert.Empty(t, repo.rows)
}

func TestRunWindowMismatchIsConfigError(t *testing.T) {
	off := tradeSetup("s1")
	off.Timeframe = contracts.Timeframe4H // swing profile is configured for 1D

	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{off}}
	repo := newFakeOutcomeRepo()
	r := newTestRunner([]contracts.Snapshot{snap}, repo, nil)

	sum, err := r.Run(context.Background(), BatchParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Skipped[skipWindowMismatch])
	assert.Equal(t, 1, sum.Errors)
	assert.Empty(t, repo.rows)
}

func TestRunFiltersAndLimit(t *testing.T) {
	s1 := tradeSetup("s1")
	s2 := tradeSetup("s2")
	s2.AssetID = "eth-1"
	s2.AssetClass = contracts.ClassCrypto
	s2.PlaybookID = playbook.IDCrypto

	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{s1, s2}}
	candles := map[string][]contracts.Candle{
		"gold-1": forwardCandles([4]float64{100, 113, 99, 112}),
		"eth-1":  forwardCandles([4]float64{100, 113, 99, 112}),
	}

	t.Run("asset filter", func(t *testing.T) {
		repo := newFakeOutcomeRepo()
		r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
		sum, err := r.Run(context.Background(), BatchParams{AssetFilter: []string{"eth-1"}})
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Evaluated)
		assert.Equal(t, 1, sum.Skipped[skipFilteredOut])
		assert.Len(t, repo.rows, 1)
	})

	t.Run("playbook family filter", func(t *testing.T) {
		repo := newFakeOutcomeRepo()
		r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
		sum, err := r.Run(context.Background(), BatchParams{PlaybookFilter: "gold"})
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Evaluated)
		assert.Equal(t, 1, sum.Skipped[skipFilteredOut])
		_, err = repo.Get(context.Background(), "snap-1", "s1")
		require.NoError(t, err)
	})

	t.Run("limit caps the walk", func(t *testing.T) {
		repo := newFakeOutcomeRepo()
		r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
		sum, err := r.Run(context.Background(), BatchParams{Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Setups)
		assert.Equal(t, 1, sum.Evaluated)
	})
}

func TestRunDryRunPersistsNothing(t *testing.T) {
	snap := contracts.Snapshot{ID: "snap-1", Setups: []contracts.Setup{tradeSetup("s1")}}
	repo := newFakeOutcomeRepo()
	candles := map[string][]contracts.Candle{
		"gold-1": forwardCandles([4]float64{100, 113, 99, 112}),
	}

	r := newTestRunner([]contracts.Snapshot{snap}, repo, candles)
	sum, err := r.Run(context.Background(), BatchParams{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Evaluated)
	assert.Equal(t, 1, sum.Inserted) // counted, not persisted
	assert.Empty(t, repo.rows)
}
