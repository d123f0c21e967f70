// Package levels derives the numeric trade plan (entry band, stop,
// target) for a setup from recent realized volatility.
package levels

import (
	"fmt"
	"math"

	"github.com/wonny/argus/v1/internal/contracts"
)

// Volatility band multiples. 손절/목표는 ATR 배수로 고정.
const (
	atrPeriod   = 14
	entryBandK  = 0.3
	stopATRMult = 1.5
	tpATRMult   = 3.0
)

// Volatility labels derived from ATR as a fraction of price.
const (
	VolLow    = "low"
	VolMedium = "medium"
	VolHigh   = "high"
)

// Compute builds levels around the latest close. Direction must be
// long or short; neutral setups carry no levels.
func Compute(dir contracts.Direction, candles []contracts.Candle) (contracts.Levels, error) {
	if dir != contracts.DirectionLong && dir != contracts.DirectionShort {
		return contracts.Levels{}, fmt.Errorf("no levels for direction %q", dir)
	}
	if len(candles) == 0 {
		return contracts.Levels{}, fmt.Errorf("no candles to derive levels from")
	}

	ref := candles[len(candles)-1].Close
	if ref <= 0 {
		return contracts.Levels{}, fmt.Errorf("non-positive reference price %.5f", ref)
	}

	atr := averageRange(candles)
	if atr <= 0 {
		// flat tape: fall back to a thin synthetic band so levels stay
		// ordered
		atr = ref * 0.001
	}

	band := atr * entryBandK
	var l contracts.Levels
	switch dir {
	case contracts.DirectionLong:
		l = contracts.Levels{
			EntryLow:   ref - band,
			EntryHigh:  ref + band,
			StopLoss:   ref - atr*stopATRMult,
			TakeProfit: ref + atr*tpATRMult,
		}
	case contracts.DirectionShort:
		l = contracts.Levels{
			EntryLow:   ref - band,
			EntryHigh:  ref + band,
			StopLoss:   ref + atr*stopATRMult,
			TakeProfit: ref - atr*tpATRMult,
		}
	}

	l.RiskReward = RiskReward(dir, l)
	l.Volatility = VolatilityLabel(atr, ref)

	if err := l.Validate(dir); err != nil {
		return contracts.Levels{}, err
	}
	return l, nil
}

// RiskReward returns reward/risk measured from the entry midpoint,
// 0 when risk is degenerate.
func RiskReward(dir contracts.Direction, l contracts.Levels) float64 {
	mid := l.EntryMid()
	var risk, reward float64
	switch dir {
	case contracts.DirectionLong:
		risk = mid - l.StopLoss
		reward = l.TakeProfit - mid
	case contracts.DirectionShort:
		risk = l.StopLoss - mid
		reward = mid - l.TakeProfit
	}
	if risk <= 0 {
		return 0
	}
	return math.Round(reward/risk*100) / 100
}

// VolatilityLabel buckets ATR as a fraction of price.
func VolatilityLabel(atr, price float64) string {
	if price <= 0 {
		return VolMedium
	}
	ratio := atr / price
	switch {
	case ratio < 0.005:
		return VolLow
	case ratio < 0.015:
		return VolMedium
	default:
		return VolHigh
	}
}

// averageRange is a plain average of the last atrPeriod bar ranges
func averageRange(candles []contracts.Candle) float64 {
	window := candles
	if len(window) > atrPeriod {
		window = window[len(window)-atrPeriod:]
	}
	var sum float64
	for _, c := range window {
		sum += c.Range()
	}
	return sum / float64(len(window))
}
