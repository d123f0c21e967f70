package playbook

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/rings"
)

func passingContext() GateContext {
	return GateContext{
		Direction: contracts.DirectionLong,
		Profile:   contracts.ProfileSwing,
		Scores: contracts.RingScores{
			Trend: 72, Event: 45, Bias: 65, Sentiment: 68, Orderflow: 66, Confidence: 76,
		},
		Levels: contracts.Levels{
			EntryLow: 99, EntryHigh: 101, StopLoss: 95, TakeProfit: 112, RiskReward: 2.4,
		},
		FlowMode: rings.FlowBuyers,
	}
}

func TestEvaluateGradeA(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Get(IDGeneric)
	require.NoError(t, err)

	v := p.Evaluate(passingContext())
	assert.Equal(t, contracts.GradeA, v.Grade)
	assert.Empty(t, v.FailedGate)
	assert.NotEmpty(t, v.Rationale)
}

func TestEvaluateGradeBOnThinMargin(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Get(IDGeneric)
	require.NoError(t, err)

	ctx := passingContext()
	ctx.Scores.Trend = p.Thresholds.MinTrend + 1 // clears the gate, misses the A margin
	ctx.Scores.Confidence = p.Thresholds.MinConfidence + 1

	v := p.Evaluate(ctx)
	assert.Equal(t, contracts.GradeB, v.Grade)
}

func TestEvaluateFirstFailingGateWins(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Get(IDGeneric)
	require.NoError(t, err)

	// fail both regime and confirmation: regime runs first, its reason
	// must win
	ctx := passingContext()
	ctx.Scores.Trend = 40
	ctx.Scores.Orderflow = 40

	v := p.Evaluate(ctx)
	assert.Equal(t, contracts.GradeNoTrade, v.Grade)
	assert.Equal(t, "regime", v.FailedGate)
	assert.Equal(t, "Regime range / chop", v.Reason)
	assert.Equal(t, contracts.BlockSoft, v.Category)
}

func TestEvaluateGateOrderDiffersPerFamily(t *testing.T) {
	reg := NewRegistry()
	gold, err := reg.Get(IDGold)
	require.NoError(t, err)
	index, err := reg.Get(IDIndex)
	require.NoError(t, err)

	// event pressure high and confirmation failing at the same time:
	// gold checks event risk before confirmation, index the other way
	ctx := passingContext()
	ctx.Scores.Event = 95
	ctx.Scores.Orderflow = 30

	gv := gold.Evaluate(ctx)
	iv := index.Evaluate(ctx)
	assert.Equal(t, "event_risk", gv.FailedGate)
	assert.Equal(t, "confirmation", iv.FailedGate)
}

func TestEvaluateMalformedLevelsBlockHard(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Get(IDGeneric)
	require.NoError(t, err)

	// stop above entry on a long: the zone itself is broken
	ctx := passingContext()
	ctx.Levels.StopLoss = 103

	v := p.Evaluate(ctx)
	assert.Equal(t, contracts.GradeNoTrade, v.Grade)
	assert.Equal(t, "levels", v.FailedGate)
	assert.Equal(t, contracts.BlockHard, v.Category)
}

func TestEvaluateThinRRRStaysSoft(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Get(IDGeneric)
	require.NoError(t, err)

	// valid zone, reward just too thin for the floor: recoverable
	ctx := passingContext()
	ctx.Levels.RiskReward = 0.8

	v := p.Evaluate(ctx)
	assert.Equal(t, contracts.GradeNoTrade, v.Grade)
	assert.Equal(t, "rrr", v.FailedGate)
	assert.Equal(t, "RRR below floor", v.Reason)
	assert.Equal(t, contracts.BlockSoft, v.Category)
}

func TestEvaluateShortMirrorsRegime(t *testing.T) {
	reg := NewRegistry()
	p, err := reg.Get(IDGeneric)
	require.NoError(t, err)

	ctx := passingContext()
	ctx.Direction = contracts.DirectionShort
	ctx.Scores.Trend = 30 // strong downtrend
	ctx.Scores.Orderflow = 35
	ctx.FlowMode = rings.FlowSellers
	ctx.Levels = contracts.Levels{
		EntryLow: 99, EntryHigh: 101, StopLoss: 105, TakeProfit: 88, RiskReward: 2.4,
	}

	v := p.Evaluate(ctx)
	assert.NotEqual(t, contracts.GradeNoTrade, v.Grade)
}

func TestResolvePerClass(t *testing.T) {
	reg := NewRegistry()
	tests := []struct {
		class contracts.AssetClass
		want  string
	}{
		{contracts.ClassGold, IDGold},
		{contracts.ClassIndex, IDIndex},
		{contracts.ClassCrypto, IDCrypto},
		{contracts.ClassFX, IDFX},
		{"commodity", IDGeneric}, // unknown class falls through to generic
	}
	for _, tt := range tests {
		p, err := reg.Resolve(contracts.Asset{ID: "a1", Class: tt.class})
		require.NoError(t, err)
		assert.Equal(t, tt.want, p.ID, "class %s", tt.class)
	}
}

func TestResolveAssetPinnedPlaybookWins(t *testing.T) {
	reg := NewRegistry()
	gold, err := reg.Get(IDGold)
	require.NoError(t, err)

	tuned := *gold
	tuned.ID = "gold-xauusd-v1"
	tuned.Label = "XAUUSD tuned"
	tuned.Thresholds.MinTrend = 62
	reg.RegisterForAsset("XAUUSD", &tuned)

	p, err := reg.Resolve(contracts.Asset{ID: "a1", Symbol: "XAUUSD", Class: contracts.ClassGold})
	require.NoError(t, err)
	assert.Equal(t, "gold-xauusd-v1", p.ID)

	// other gold assets keep the family playbook
	p, err = reg.Resolve(contracts.Asset{ID: "a2", Symbol: "GC", Class: contracts.ClassGold})
	require.NoError(t, err)
	assert.Equal(t, IDGold, p.ID)

	// pinned playbooks registered via Get-able id so overrides reach them
	got, err := reg.Get("gold-xauusd-v1")
	require.NoError(t, err)
	assert.Equal(t, 62, got.Thresholds.MinTrend)
}

func TestResolveAssetPinnedWrongFamilyFailsLoudly(t *testing.T) {
	reg := NewRegistry()
	crypto, err := reg.Get(IDCrypto)
	require.NoError(t, err)

	reg.RegisterForAsset("XAUUSD", crypto)
	_, err = reg.Resolve(contracts.Asset{ID: "a1", Symbol: "XAUUSD", Class: contracts.ClassGold})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlaybookMismatch))
}

func TestCheckCompatibleGuard(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.CheckCompatible(IDGold, contracts.ClassGold))
	require.NoError(t, reg.CheckCompatible(IDGeneric, contracts.ClassCrypto))

	err := reg.CheckCompatible(IDCrypto, contracts.ClassGold)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlaybookMismatch))

	err = reg.CheckCompatible("nope-v9", contracts.ClassGold)
	assert.True(t, errors.Is(err, ErrUnknownPlaybook))
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playbooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
playbooks:
  gold-v1:
    min_trend: 65
    min_rrr: 2.5
`), 0o644))

	reg := NewRegistry()
	hash, err := reg.LoadOverrides(path)
	require.NoError(t, err)
	assert.Len(t, hash, 12)

	gold, err := reg.Get(IDGold)
	require.NoError(t, err)
	assert.Equal(t, 65, gold.Thresholds.MinTrend)
	assert.Equal(t, 2.5, gold.Thresholds.MinRRR)
	// untouched fields keep builtin values
	assert.Equal(t, 55, gold.Thresholds.MinOrderflow)
}

func TestLoadOverridesRejectsUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playbooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
playbooks:
  gold-v1:
    min_trendd: 65
`), 0o644))

	reg := NewRegistry()
	_, err := reg.LoadOverrides(path)
	require.Error(t, err)
}

func TestLoadOverridesRejectsUnknownPlaybook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playbooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
playbooks:
  ghost-v1:
    min_trend: 65
`), 0o644))

	reg := NewRegistry()
	_, err := reg.LoadOverrides(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownPlaybook))
}

func TestLoadOverridesRejectsOutOfRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "playbooks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
playbooks:
  gold-v1:
    max_event: 120
`), 0o644))

	reg := NewRegistry()
	_, err := reg.LoadOverrides(path)
	require.Error(t, err)
}
