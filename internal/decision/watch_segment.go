package decision

import (
	"github.com/wonny/argus/v1/internal/contracts"
	"github.com/wonny/argus/v1/internal/levels"
	"github.com/wonny/argus/v1/internal/rings"
)

// Watch segments. Exactly one is assigned per WATCH setup.
const (
	SegmentVolatility         = "volatility"
	SegmentEventRisk          = "event_risk"
	SegmentDirectionUnknown   = "direction_unknown"
	SegmentBiasSoft           = "bias_soft"
	SegmentBiasNearMiss       = "bias_near_miss"
	SegmentConfidence         = "confidence"
	SegmentVolatilityElevated = "volatility_elevated"
	SegmentOther              = "other"
)

// classifyWatchSegment walks a fixed precedence chain and returns the
// first matching segment. The order is part of the contract: a choppy
// tape reads as volatility even when event risk is elevated too.
//
// 순서 변경 금지: 세그먼트 우선순위가 곧 스펙
func classifyWatchSegment(in Input) string {
	notes := in.RingNotes

	switch {
	case in.FlowMode == rings.FlowChoppy || hasNote(notes, contracts.RingTrend, "choppy_path"):
		return SegmentVolatility
	case in.Verdict.FailedGate == "event_risk" || hasNote(notes, contracts.RingEvent, "high_impact_soon"):
		return SegmentEventRisk
	case in.Direction == contracts.DirectionNeutral || in.Direction == "":
		return SegmentDirectionUnknown
	case hasNote(notes, contracts.RingBias, "bias_neutral") || hasNote(notes, contracts.RingBias, "no_bias_data"):
		return SegmentBiasSoft
	case hasNote(notes, contracts.RingBias, "bias_opposed") && in.Scores.Bias >= 35:
		return SegmentBiasNearMiss
	case in.Verdict.FailedGate == "conviction" || in.Scores.Confidence < 50:
		return SegmentConfidence
	case in.Levels.Volatility == levels.VolHigh:
		return SegmentVolatilityElevated
	default:
		return SegmentOther
	}
}

func hasNote(notes map[contracts.Ring][]string, ring contracts.Ring, want string) bool {
	for _, n := range notes[ring] {
		if n == want {
			return true
		}
	}
	return false
}
