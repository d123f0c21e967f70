package rings

import (
	"math"

	"github.com/wonny/argus/v1/internal/contracts"
)

// FlowMode summarizes who controlled the intraday tape.
type FlowMode string

const (
	FlowBuyers   FlowMode = "buyers"
	FlowSellers  FlowMode = "sellers"
	FlowBalanced FlowMode = "balanced"
	FlowChoppy   FlowMode = "choppy"
)

// orderflowMinBars is the minimum intraday sample before the ring
// reports anything other than neutral.
const orderflowMinBars = 8

// OrderflowScore reads intraday bars for close location, relative
// volume, range expansion and directional consistency. Fewer than
// orderflowMinBars bars is neutral 50 / balanced with note
// insufficient_intraday_data.
func OrderflowScore(intraday []contracts.Candle) (int, FlowMode, []string) {
	if len(intraday) < orderflowMinBars {
		return 50, FlowBalanced, []string{"insufficient_intraday_data"}
	}

	recent := intraday
	if len(recent) > 32 {
		recent = recent[len(recent)-32:]
	}
	half := len(recent) / 2
	earlier, later := recent[:half], recent[half:]

	// CLV: 종가가 봉 범위 어디에 위치하는지 (-1..+1)
	var clvSum float64
	clvCount := 0
	bullish := 0
	for _, c := range later {
		if r := c.Range(); r > 0 {
			clvSum += ((c.Close - c.Low) - (c.High - c.Close)) / r
			clvCount++
		}
		if c.Bullish() {
			bullish++
		}
	}
	clv := 0.0
	if clvCount > 0 {
		clv = clvSum / float64(clvCount)
	}

	relVolume := ratioOfAverages(later, earlier, func(c contracts.Candle) float64 { return c.Volume })
	expansion := ratioOfAverages(later, earlier, contracts.Candle.Range)
	consistency := float64(bullish) / float64(len(later))

	score := 50 +
		clv*28 +
		(relVolume-1)*18 +
		(expansion-1)*14 +
		(consistency-0.5)*30

	mode := FlowBalanced
	switch {
	case clv > 0.2 && consistency > 0.6:
		mode = FlowBuyers
	case clv < -0.2 && consistency < 0.4:
		mode = FlowSellers
	case expansion > 1.3 && math.Abs(clv) < 0.15:
		mode = FlowChoppy
	}

	var notes []string
	if relVolume > 1.5 {
		notes = append(notes, "volume_surge")
	}
	if mode == FlowChoppy {
		notes = append(notes, "choppy_tape")
	}
	return clampScore(score), mode, notes
}

// ratioOfAverages returns avg(later)/avg(earlier) for the given field,
// 1.0 when the earlier average is zero.
func ratioOfAverages(later, earlier []contracts.Candle, field func(contracts.Candle) float64) float64 {
	avg := func(cs []contracts.Candle) float64 {
		if len(cs) == 0 {
			return 0
		}
		var sum float64
		for _, c := range cs {
			sum += field(c)
		}
		return sum / float64(len(cs))
	}
	base := avg(earlier)
	if base == 0 {
		return 1
	}
	return avg(later) / base
}
