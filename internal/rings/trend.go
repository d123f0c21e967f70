package rings

import (
	"math"

	"github.com/wonny/argus/v1/internal/contracts"
)

// trendLookback is the number of most recent bars the trend ring reads.
const trendLookback = 20

// TrendScore maps directional price change over the lookback window to
// 0-100: 50 flat, above 50 up, below 50 down. Efficiency of the move
// (net change vs summed bar-to-bar travel) scales the distance from 50
// so choppy drift stays near neutral.
func TrendScore(candles []contracts.Candle) (int, []string) {
	if len(candles) < 2 {
		return 50, []string{"insufficient_history"}
	}

	window := candles
	if len(window) > trendLookback {
		window = window[len(window)-trendLookback:]
	}

	first := window[0].Close
	last := window[len(window)-1].Close
	if first == 0 {
		return 50, []string{"insufficient_history"}
	}
	netRet := (last - first) / first

	// 이동 효율: 순변화 / 총이동거리
	var travel float64
	for i := 1; i < len(window); i++ {
		travel += math.Abs(window[i].Close - window[i-1].Close)
	}
	efficiency := 0.0
	if travel > 0 {
		efficiency = math.Abs(last-first) / travel
	}

	base := math.Tanh(netRet*12) * 40
	score := 50 + base*(0.5+0.5*efficiency)

	var notes []string
	if len(window) < trendLookback {
		notes = append(notes, "short_lookback")
	}
	if efficiency < 0.25 && math.Abs(netRet) > 0.002 {
		notes = append(notes, "choppy_path")
	}
	return clampScore(score), notes
}
