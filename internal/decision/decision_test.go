package decision

import (
	"testing"

	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/levels"
	"github.com/wonny/argus/v1/internal/playbook"
	"github.com/wonny/argus/v1/internal/rings"
)

func baseInput() Input {
	return Input{
		Verdict:   playbook.Verdict{Grade: contracts.GradeA},
		Direction: contracts.DirectionLong,
		Scores:    contracts.RingScores{Trend: 70, Event: 45, Bias: 65, Sentiment: 68, Orderflow: 66, Confidence: 72},
		FlowMode:  rings.FlowBuyers,
	}
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(*Input)
		want  contracts.Decision
		wantC contracts.BlockCategory
	}{
		{"grade A trades", func(in *Input) {}, contracts.DecisionTrade, contracts.BlockNone},
		{"grade B trades", func(in *Input) {
			in.Verdict.Grade = contracts.GradeB
		}, contracts.DecisionTrade, contracts.BlockNone},
		{"stale blocks even grade A", func(in *Input) {
			in.Stale = true
		}, contracts.DecisionBlocked, contracts.BlockHard},
		{"soft no-trade watches", func(in *Input) {
			in.Verdict = playbook.Verdict{Grade: contracts.GradeNoTrade, Category: contracts.BlockSoft, FailedGate: "regime", Reason: "Regime range / chop"}
		}, contracts.DecisionWatch, contracts.BlockSoft},
		{"hard no-trade blocks", func(in *Input) {
			in.Verdict = playbook.Verdict{Grade: contracts.GradeNoTrade, Category: contracts.BlockHard, FailedGate: "levels", Reason: "Invalid RRR / levels"}
		}, contracts.DecisionBlocked, contracts.BlockHard},
		{"thin RRR watches, not blocks", func(in *Input) {
			in.Verdict = playbook.Verdict{Grade: contracts.GradeNoTrade, Category: contracts.BlockSoft, FailedGate: "rrr", Reason: "RRR below floor"}
		}, contracts.DecisionWatch, contracts.BlockSoft},
		{"missing grade is unknown", func(in *Input) {
			in.Verdict = playbook.Verdict{}
		}, contracts.DecisionUnknown, contracts.BlockNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			tt.mut(&in)
			got := Derive(in)
			if got.Decision != tt.want {
				t.Fatalf("Decision = %s, want %s", got.Decision, tt.want)
			}
			if got.Category != tt.wantC {
				t.Fatalf("Category = %s, want %s", got.Category, tt.wantC)
			}
		})
	}
}

func TestDeriveThinRRRThroughPlaybookWatches(t *testing.T) {
	reg := playbook.NewRegistry()
	p, err := reg.Get(playbook.IDGeneric)
	if err != nil {
		t.Fatal(err)
	}

	// well-formed zone whose reward is simply below the floor
	ctx := playbook.GateContext{
		Direction: contracts.DirectionLong,
		Profile:   contracts.ProfileSwing,
		Scores:    contracts.RingScores{Trend: 72, Event: 45, Bias: 65, Sentiment: 68, Orderflow: 66, Confidence: 76},
		Levels: contracts.Levels{
			EntryLow: 99, EntryHigh: 101, StopLoss: 95, TakeProfit: 104, RiskReward: 0.8,
		},
		FlowMode: rings.FlowBuyers,
	}

	got := Derive(Input{
		Verdict:   p.Evaluate(ctx),
		Direction: ctx.Direction,
		Scores:    ctx.Scores,
		Levels:    ctx.Levels,
		FlowMode:  ctx.FlowMode,
	})
	if got.Decision != contracts.DecisionWatch {
		t.Fatalf("Decision = %s, want WATCH for thin RRR", got.Decision)
	}
	if got.Category != contracts.BlockSoft {
		t.Fatalf("Category = %s, want soft", got.Category)
	}
}

func TestDeriveStaleWinsOverWatch(t *testing.T) {
	in := baseInput()
	in.Stale = true
	in.Verdict = playbook.Verdict{Grade: contracts.GradeNoTrade, Category: contracts.BlockSoft, Reason: "Regime range / chop"}
	got := Derive(in)
	if got.Decision != contracts.DecisionBlocked || got.NoTradeReason != "Stale market data" {
		t.Fatalf("stale should dominate: got %+v", got)
	}
}

func watchInput() Input {
	in := baseInput()
	in.Verdict = playbook.Verdict{Grade: contracts.GradeNoTrade, Category: contracts.BlockSoft, FailedGate: "regime", Reason: "Regime range / chop"}
	in.RingNotes = map[contracts.Ring][]string{}
	return in
}

func TestWatchSegmentPrecedence(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Input)
		want string
	}{
		{"choppy tape wins over everything", func(in *Input) {
			in.FlowMode = rings.FlowChoppy
			in.RingNotes[contracts.RingEvent] = []string{"high_impact_soon"}
			in.Direction = contracts.DirectionNeutral
		}, SegmentVolatility},
		{"event risk before direction", func(in *Input) {
			in.RingNotes[contracts.RingEvent] = []string{"high_impact_soon"}
			in.Direction = contracts.DirectionNeutral
		}, SegmentEventRisk},
		{"event risk via failed gate", func(in *Input) {
			in.Verdict.FailedGate = "event_risk"
		}, SegmentEventRisk},
		{"direction unknown before bias", func(in *Input) {
			in.Direction = contracts.DirectionNeutral
			in.RingNotes[contracts.RingBias] = []string{"no_bias_data"}
		}, SegmentDirectionUnknown},
		{"bias soft on missing bias", func(in *Input) {
			in.RingNotes[contracts.RingBias] = []string{"no_bias_data"}
		}, SegmentBiasSoft},
		{"bias near miss on mild opposition", func(in *Input) {
			in.RingNotes[contracts.RingBias] = []string{"bias_opposed"}
			in.Scores.Bias = 40
		}, SegmentBiasNearMiss},
		{"low confidence", func(in *Input) {
			in.Scores.Confidence = 42
		}, SegmentConfidence},
		{"elevated volatility label", func(in *Input) {
			in.Levels.Volatility = levels.VolHigh
		}, SegmentVolatilityElevated},
		{"fallback other", func(in *Input) {}, SegmentOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := watchInput()
			tt.mut(&in)
			got := Derive(in)
			if got.Decision != contracts.DecisionWatch {
				t.Fatalf("Decision = %s, want WATCH", got.Decision)
			}
			if got.WatchSegment != tt.want {
				t.Fatalf("WatchSegment = %s, want %s", got.WatchSegment, tt.want)
			}
		})
	}
}

func TestWatchSegmentIsSurfacedInRationale(t *testing.T) {
	in := watchInput()
	in.FlowMode = rings.FlowChoppy
	got := Derive(in)
	if len(got.Rationale) == 0 || got.Rationale[0] != "watch:"+SegmentVolatility {
		t.Fatalf("segment should lead the rationale, got %v", got.Rationale)
	}
}
