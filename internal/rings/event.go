package rings

import (
	"hash/fnv"
	"math"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
)

// Event ring tuning. 가중치는 impact 레벨별로 고정.
var eventImpactWeight = map[int]float64{
	1: 0.2,
	2: 0.55,
	3: 1.0,
}

const (
	// noEventScore is the fixed score when zero relevant events fall in
	// the window. Not hash-derived: a quiet calendar reads the same for
	// every asset.
	noEventScore = 45

	// eventDecayScale controls the exponential time decay of upcoming
	// events: weight halves roughly every 4 hours out.
	eventDecayScale = 6 * time.Hour

	highImpactSoonBonus  = 10
	clusteredEventsBonus = 6
)

// EventBaseline derives the deterministic per-asset starting score used
// when relevant events exist. Same symbol+timeframe always maps to the
// same value in [40, 50].
func EventBaseline(symbol string, tf contracts.Timeframe) int {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	h.Write([]byte("|"))
	h.Write([]byte(tf))
	return 40 + int(h.Sum32()%11)
}

// EventScore rates calendar pressure around asOf. Only events inside
// [asOf-before, asOf+after] count; upcoming events decay with distance,
// past events weigh half. Zero relevant events returns exactly 45 with
// note no_relevant_events.
func EventScore(symbol string, tf contracts.Timeframe, events []contracts.Event, asOf time.Time, before, after time.Duration) (int, []string) {
	windowStart := asOf.Add(-before)
	windowEnd := asOf.Add(after)

	var relevant []contracts.Event
	for _, ev := range events {
		if !ev.Relevant(symbol) {
			continue
		}
		if ev.ScheduledAt.Before(windowStart) || ev.ScheduledAt.After(windowEnd) {
			continue
		}
		relevant = append(relevant, ev)
	}

	if len(relevant) == 0 {
		return noEventScore, []string{"no_relevant_events"}
	}

	var pressure float64
	highImpactSoon := false
	for _, ev := range relevant {
		impact := eventImpactWeight[ev.Impact]
		if impact == 0 {
			impact = eventImpactWeight[1]
		}

		dt := ev.ScheduledAt.Sub(asOf)
		timeWeight := 1.0
		if dt >= 0 {
			timeWeight = math.Exp(-float64(dt) / float64(eventDecayScale))
			if ev.Impact == 3 && dt <= time.Hour {
				highImpactSoon = true
			}
		} else {
			// 이미 지난 이벤트는 절반 가중치
			timeWeight = 0.5 * math.Exp(float64(dt)/float64(eventDecayScale))
		}
		pressure += impact * timeWeight
	}

	// normalize against a "busy day" reference load of 2.5
	normalized := math.Min(pressure/2.5, 1.0)
	score := float64(EventBaseline(symbol, tf)) + normalized*40

	notes := []string{}
	if highImpactSoon {
		score += highImpactSoonBonus
		notes = append(notes, "high_impact_soon")
	}
	if len(relevant) >= 3 {
		score += clusteredEventsBonus
		notes = append(notes, "clustered_events")
	}
	return clampScore(score), notes
}
