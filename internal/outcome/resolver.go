// Package outcome resolves finished setups against the candles that
// followed them and persists the results.
package outcome

import (
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
)

// Price-scale guardrail: when the first forward candle's close is this
// far off the entry midpoint, the candles are assumed to be on a
// different scale (contract roll, redenomination, bad feed) and the
// outcome is invalid rather than a fake stop-out.
const (
	scaleRatioMin = 0.8
	scaleRatioMax = 1.2
)

// Result of walking one setup's forward window.
type Result struct {
	Status     contracts.OutcomeStatus
	BarIndex   *int // 1-based bar that resolved the setup
	ResolvedAt *time.Time
	Reason     string
}

// Resolve walks candles in order against the setup's levels and
// returns the first terminal hit.
//
// Same-candle tie-break when one bar touches both levels: a gap open
// at or beyond a level counts as that level filling first; otherwise
// the candle body decides (close above open resolves toward target for
// longs, toward stop for shorts); a doji is ambiguous.
func Resolve(dir contracts.Direction, levels contracts.Levels, candles []contracts.Candle, windowBars int) Result {
	if dir != contracts.DirectionLong && dir != contracts.DirectionShort {
		return Result{Status: contracts.OutcomeInvalid, Reason: "no_directional_levels"}
	}
	if err := levels.Validate(dir); err != nil {
		return Result{Status: contracts.OutcomeInvalid, Reason: "invalid_levels"}
	}
	if len(candles) == 0 {
		return Result{Status: contracts.OutcomeStillOpen, Reason: "no_forward_candles"}
	}

	// 가격 스케일 가드레일
	mid := levels.EntryMid()
	if mid > 0 {
		ratio := candles[0].Close / mid
		if ratio < scaleRatioMin || ratio > scaleRatioMax {
			return Result{Status: contracts.OutcomeInvalid, Reason: "price_scale_mismatch"}
		}
	}

	walk := candles
	if len(walk) > windowBars {
		walk = walk[:windowBars]
	}

	for i, c := range walk {
		r := resolveBar(dir, levels, c)
		if r == "" {
			continue
		}
		idx := i + 1
		ts := c.Timestamp
		switch r {
		case barTarget:
			return Result{Status: contracts.OutcomeHitTarget, BarIndex: &idx, ResolvedAt: &ts}
		case barStop:
			return Result{Status: contracts.OutcomeHitStop, BarIndex: &idx, ResolvedAt: &ts}
		case barAmbiguous:
			return Result{Status: contracts.OutcomeAmbiguous, BarIndex: &idx, ResolvedAt: &ts, Reason: "both_levels_same_bar"}
		}
	}

	if len(candles) >= windowBars {
		return Result{Status: contracts.OutcomeExpired, Reason: "window_exhausted"}
	}
	return Result{Status: contracts.OutcomeStillOpen, Reason: "window_incomplete"}
}

type barResolution string

const (
	barNone      barResolution = ""
	barTarget    barResolution = "target"
	barStop      barResolution = "stop"
	barAmbiguous barResolution = "ambiguous"
)

func resolveBar(dir contracts.Direction, l contracts.Levels, c contracts.Candle) barResolution {
	var targetHit, stopHit, openAtTarget, openAtStop, bodyTowardTarget, bodyTowardStop bool
	switch dir {
	case contracts.DirectionLong:
		targetHit = c.High >= l.TakeProfit
		stopHit = c.Low <= l.StopLoss
		openAtTarget = c.Open >= l.TakeProfit
		openAtStop = c.Open <= l.StopLoss
		bodyTowardTarget = c.Bullish()
		bodyTowardStop = c.Bearish()
	case contracts.DirectionShort:
		targetHit = c.Low <= l.TakeProfit
		stopHit = c.High >= l.StopLoss
		openAtTarget = c.Open <= l.TakeProfit
		openAtStop = c.Open >= l.StopLoss
		bodyTowardTarget = c.Bearish()
		bodyTowardStop = c.Bullish()
	}

	switch {
	case targetHit && stopHit:
		// 양쪽 레벨을 같은 봉에서 터치: 갭 → 몸통 → 모호 순서로 판정
		switch {
		case openAtTarget:
			return barTarget
		case openAtStop:
			return barStop
		case bodyTowardTarget:
			return barTarget
		case bodyTowardStop:
			return barStop
		default:
			return barAmbiguous
		}
	case targetHit:
		return barTarget
	case stopHit:
		return barStop
	}
	return barNone
}
