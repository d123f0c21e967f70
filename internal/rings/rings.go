// Package rings computes the six 0-100 scores that grade every setup.
// Every scorer is a pure function: same inputs, same score, no clock
// and no I/O. Missing inputs degrade to the neutral 50, never to an
// error.
package rings

import (
	"math"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
)

// Input bundles everything the scorers need for one asset evaluation.
type Input struct {
	Symbol    string
	Timeframe contracts.Timeframe
	Direction contracts.Direction
	Profile   contracts.Profile

	// Candles on the setup timeframe, ascending, most recent last.
	Candles []contracts.Candle
	// Intraday candles (15m) for the orderflow ring.
	Intraday []contracts.Candle

	Events    []contracts.Event
	Bias      *contracts.BiasReading
	Sentiment *contracts.SentimentReading

	// AsOf anchors event-time decay; the caller passes the snapshot
	// build time so scoring stays reproducible.
	AsOf time.Time
	// EventWindow bounds which events count as relevant.
	EventWindowBefore time.Duration
	EventWindowAfter  time.Duration
}

// Result is the full ring output for one setup.
type Result struct {
	Scores contracts.RingScores
	Notes  map[contracts.Ring][]string
}

// ComputeAll runs every scorer in dependency order: confidence consumes
// the five primary rings.
func ComputeAll(in Input) Result {
	notes := make(map[contracts.Ring][]string)

	trend, tn := TrendScore(in.Candles)
	event, en := EventScore(in.Symbol, in.Timeframe, in.Events, in.AsOf, in.EventWindowBefore, in.EventWindowAfter)
	bias, bn := BiasScore(in.Bias, in.Direction)
	sentiment, sn := SentimentScore(in.Sentiment, in.Direction, trend, bias)
	orderflow, _, on := OrderflowScore(in.Intraday)
	confidence, cn := ConfidenceScore(trend, event, bias, sentiment, orderflow)

	for ring, n := range map[contracts.Ring][]string{
		contracts.RingTrend: tn, contracts.RingEvent: en, contracts.RingBias: bn,
		contracts.RingSentiment: sn, contracts.RingOrderflow: on, contracts.RingConfidence: cn,
	} {
		if len(n) > 0 {
			notes[ring] = n
		}
	}

	return Result{
		Scores: contracts.RingScores{
			Trend:      trend,
			Event:      event,
			Bias:       bias,
			Sentiment:  sentiment,
			Orderflow:  orderflow,
			Confidence: confidence,
		},
		Notes: notes,
	}
}

// clampScore bounds v to the ring score range
func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 50
	}
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}
