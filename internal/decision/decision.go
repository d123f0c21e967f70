// Package decision turns a playbook verdict into the final TRADE /
// WATCH / BLOCKED / UNKNOWN call and, for WATCH, classifies the setup
// into exactly one watch segment.
package decision

import (
	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/playbook"
	"github.com/wonny/argus/v1/internal/rings"
)

// Input carries everything the derivation reads for one setup.
type Input struct {
	Verdict   playbook.Verdict
	Direction contracts.Direction
	Scores    contracts.RingScores
	RingNotes map[contracts.Ring][]string
	Levels    contracts.Levels
	FlowMode  rings.FlowMode
	Stale     bool
}

// Result is the derived decision.
type Result struct {
	Decision      contracts.Decision
	Category      contracts.BlockCategory
	WatchSegment  string
	NoTradeReason string
	Rationale     []string
}

// Derive maps (grade, block category, staleness) to a decision.
// Staleness always wins: stale inputs block even an A-grade setup.
func Derive(in Input) Result {
	if in.Stale {
		return Result{
			Decision:      contracts.DecisionBlocked,
			Category:      contracts.BlockHard,
			NoTradeReason: "Stale market data",
		}
	}

	switch in.Verdict.Grade {
	case contracts.GradeA, contracts.GradeB:
		return Result{
			Decision:  contracts.DecisionTrade,
			Rationale: in.Verdict.Rationale,
		}
	case contracts.GradeNoTrade:
		if in.Verdict.Category == contracts.BlockHard {
			return Result{
				Decision:      contracts.DecisionBlocked,
				Category:      contracts.BlockHard,
				NoTradeReason: in.Verdict.Reason,
			}
		}
		seg := classifyWatchSegment(in)
		return Result{
			Decision:      contracts.DecisionWatch,
			Category:      contracts.BlockSoft,
			WatchSegment:  seg,
			NoTradeReason: in.Verdict.Reason,
			Rationale:     append([]string{"watch:" + seg}, in.Verdict.Rationale...),
		}
	}

	// missing or unrecognized grade: surface UNKNOWN rather than guess
	return Result{Decision: contracts.DecisionUnknown}
}
