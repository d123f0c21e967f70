// Package playbook grades setups through ordered gate chains. Each
// asset family carries its own playbook; gates run in order and the
// first failure decides the NO_TRADE reason, so gate order is part of
// the contract.
package playbook

import (
	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/rings"
)

// Thresholds are the tunable numeric limits of one playbook.
// ⭐ SSOT: 게이트 임계값은 플레이북 상수로만 관리 (yaml 오버라이드 가능)
type Thresholds struct {
	MinTrend      int     `yaml:"min_trend"`
	MinOrderflow  int     `yaml:"min_orderflow"`
	MinConfidence int     `yaml:"min_confidence"`
	MaxEvent      int     `yaml:"max_event"`
	MinRRR        float64 `yaml:"min_rrr"`

	// A-grade margins on top of the gate minimums
	GradeATrendMargin int `yaml:"grade_a_trend_margin"`
	GradeAConfidence  int `yaml:"grade_a_confidence"`
}

// GateContext is everything a gate can inspect for one setup.
type GateContext struct {
	Direction contracts.Direction
	Profile   contracts.Profile
	Scores    contracts.RingScores
	Levels    contracts.Levels
	FlowMode  rings.FlowMode
}

// Gate is one ordered check in a playbook chain.
type Gate struct {
	Name     string
	Reason   string
	Category contracts.BlockCategory
	Pass     func(ctx GateContext, th Thresholds) bool
}

// Playbook is one family's complete gate chain plus its thresholds.
type Playbook struct {
	ID         string
	Label      string
	Family     contracts.AssetClass
	Thresholds Thresholds
	Gates      []Gate
}

// Verdict is the result of running a setup through a playbook.
type Verdict struct {
	PlaybookID string
	Grade      contracts.Grade
	Category   contracts.BlockCategory
	FailedGate string
	Reason     string
	Rationale  []string
}

// Evaluate runs the gate chain in order. The first failing gate wins;
// a clean pass grades A or B on the margin thresholds.
func (p *Playbook) Evaluate(ctx GateContext) Verdict {
	v := Verdict{PlaybookID: p.ID}
	for _, g := range p.Gates {
		if !g.Pass(ctx, p.Thresholds) {
			v.Grade = contracts.GradeNoTrade
			v.Category = g.Category
			v.FailedGate = g.Name
			v.Reason = g.Reason
			return v
		}
		v.Rationale = append(v.Rationale, "passed:"+g.Name)
	}

	v.Grade = contracts.GradeB
	if ctx.Scores.Trend >= p.Thresholds.MinTrend+p.Thresholds.GradeATrendMargin &&
		ctx.Scores.Confidence >= p.Thresholds.GradeAConfidence {
		v.Grade = contracts.GradeA
	}
	return v
}

// ====== Shared gate constructors ======
// Gate chains differ per family but are assembled from these pieces so
// reasons stay consistent across playbooks.

func regimeGate() Gate {
	return Gate{
		Name:     "regime",
		Reason:   "Regime range / chop",
		Category: contracts.BlockSoft,
		Pass: func(ctx GateContext, th Thresholds) bool {
			switch ctx.Direction {
			case contracts.DirectionLong:
				return ctx.Scores.Trend >= th.MinTrend
			case contracts.DirectionShort:
				return ctx.Scores.Trend <= 100-th.MinTrend
			}
			return false
		},
	}
}

func confirmationGate() Gate {
	return Gate{
		Name:     "confirmation",
		Reason:   "Confirmation failed / chop",
		Category: contracts.BlockSoft,
		Pass: func(ctx GateContext, th Thresholds) bool {
			if ctx.FlowMode == rings.FlowChoppy {
				return false
			}
			switch ctx.Direction {
			case contracts.DirectionLong:
				return ctx.Scores.Orderflow >= th.MinOrderflow
			case contracts.DirectionShort:
				return ctx.Scores.Orderflow <= 100-th.MinOrderflow
			}
			return false
		},
	}
}

func eventRiskGate() Gate {
	return Gate{
		Name:     "event_risk",
		Reason:   "Event risk window",
		Category: contracts.BlockSoft,
		Pass: func(ctx GateContext, th Thresholds) bool {
			return ctx.Scores.Event <= th.MaxEvent
		},
	}
}

func convictionGate() Gate {
	return Gate{
		Name:     "conviction",
		Reason:   "Conviction below floor",
		Category: contracts.BlockSoft,
		Pass: func(ctx GateContext, th Thresholds) bool {
			return ctx.Scores.Confidence >= th.MinConfidence
		},
	}
}

// levelsGate rejects malformed or missing levels outright. A setup
// without a usable zone cannot be watched into validity, so this is
// the one hard gate in every chain.
func levelsGate() Gate {
	return Gate{
		Name:     "levels",
		Reason:   "Invalid RRR / levels",
		Category: contracts.BlockHard,
		Pass: func(ctx GateContext, th Thresholds) bool {
			return ctx.Levels.Validate(ctx.Direction) == nil
		},
	}
}

// rrrGate enforces the risk-reward floor on otherwise valid levels.
// A thin RRR is recoverable as the zone moves, so it stays soft.
func rrrGate() Gate {
	return Gate{
		Name:     "rrr",
		Reason:   "RRR below floor",
		Category: contracts.BlockSoft,
		Pass: func(ctx GateContext, th Thresholds) bool {
			return ctx.Levels.RiskReward >= th.MinRRR
		},
	}
}
