package outcome

import (
	"testing"
	"time"

	"github.com/wonny/argus/v1/internal/contracts"
)

var barTime = time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

func bar(open, high, low, close float64) contracts.Candle {
	return contracts.Candle{Timestamp: barTime, Open: open, High: high, Low: low, Close: close}
}

func longLevels(entryLow, entryHigh, stop, target float64) contracts.Levels {
	return contracts.Levels{EntryLow: entryLow, EntryHigh: entryHigh, StopLoss: stop, TakeProfit: target}
}

func TestResolveGapOpens(t *testing.T) {
	t.Run("gap up through target wins even with stop touch risk", func(t *testing.T) {
		// long, target 118 stop 95: opens at 120, beyond the target
		l := longLevels(104, 106, 95, 118)
		r := Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(120, 125, 110, 122)}, 10)
		if r.Status != contracts.OutcomeHitTarget {
			t.Fatalf("Status = %s, want hit_target", r.Status)
		}
		if r.BarIndex == nil || *r.BarIndex != 1 {
			t.Fatalf("BarIndex = %v, want 1", r.BarIndex)
		}
	})

	t.Run("gap down through stop", func(t *testing.T) {
		// long, target 110 stop 92: opens at 90, beyond the stop
		l := longLevels(96, 98, 92, 110)
		r := Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(90, 105, 85, 95)}, 10)
		if r.Status != contracts.OutcomeHitStop {
			t.Fatalf("Status = %s, want hit_stop", r.Status)
		}
	})
}

func TestResolveSameBarBodyTieBreak(t *testing.T) {
	// long, target 115 stop 85: one bar sweeps both levels
	l := longLevels(98, 102, 85, 115)

	t.Run("bullish body resolves toward target", func(t *testing.T) {
		r := Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(100, 130, 80, 120)}, 10)
		if r.Status != contracts.OutcomeHitTarget {
			t.Fatalf("Status = %s, want hit_target", r.Status)
		}
	})

	t.Run("bearish body resolves toward stop", func(t *testing.T) {
		r := Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(100, 130, 80, 95)}, 10)
		if r.Status != contracts.OutcomeHitStop {
			t.Fatalf("Status = %s, want hit_stop", r.Status)
		}
	})

	t.Run("doji with both levels hit is ambiguous", func(t *testing.T) {
		r := Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(100, 130, 80, 100)}, 10)
		if r.Status != contracts.OutcomeAmbiguous {
			t.Fatalf("Status = %s, want ambiguous", r.Status)
		}
		if r.Reason != "both_levels_same_bar" {
			t.Fatalf("Reason = %s", r.Reason)
		}
	})
}

func TestResolveSingleLevelHits(t *testing.T) {
	l := longLevels(98, 102, 90, 112)

	r := Resolve(contracts.DirectionLong, l, []contracts.Candle{
		bar(100, 105, 97, 104),
		bar(104, 113, 103, 111), // touches target on bar 2
	}, 10)
	if r.Status != contracts.OutcomeHitTarget {
		t.Fatalf("Status = %s, want hit_target", r.Status)
	}
	if r.BarIndex == nil || *r.BarIndex != 2 {
		t.Fatalf("BarIndex = %v, want 2", r.BarIndex)
	}

	r = Resolve(contracts.DirectionLong, l, []contracts.Candle{
		bar(100, 104, 89, 92), // sweeps the stop
	}, 10)
	if r.Status != contracts.OutcomeHitStop {
		t.Fatalf("Status = %s, want hit_stop", r.Status)
	}
}

func TestResolveShortMirrors(t *testing.T) {
	// short: entry ~100, stop 108, target 88
	l := contracts.Levels{EntryLow: 98, EntryHigh: 102, StopLoss: 108, TakeProfit: 88}

	t.Run("gap down through target", func(t *testing.T) {
		r := Resolve(contracts.DirectionShort, l, []contracts.Candle{bar(86, 90, 84, 89)}, 10)
		if r.Status != contracts.OutcomeHitTarget {
			t.Fatalf("Status = %s, want hit_target", r.Status)
		}
	})

	t.Run("bearish body resolves short toward target", func(t *testing.T) {
		r := Resolve(contracts.DirectionShort, l, []contracts.Candle{bar(100, 110, 85, 92)}, 10)
		if r.Status != contracts.OutcomeHitTarget {
			t.Fatalf("Status = %s, want hit_target", r.Status)
		}
	})

	t.Run("bullish body resolves short toward stop", func(t *testing.T) {
		r := Resolve(contracts.DirectionShort, l, []contracts.Candle{bar(100, 110, 85, 106)}, 10)
		if r.Status != contracts.OutcomeHitStop {
			t.Fatalf("Status = %s, want hit_stop", r.Status)
		}
	})
}

func TestResolveWindowOutcomes(t *testing.T) {
	l := longLevels(98, 102, 90, 120)
	quiet := func(n int) []contracts.Candle {
		out := make([]contracts.Candle, n)
		for i := range out {
			out[i] = bar(100, 103, 97, 101)
		}
		return out
	}

	t.Run("full window with no hit expires", func(t *testing.T) {
		r := Resolve(contracts.DirectionLong, l, quiet(10), 10)
		if r.Status != contracts.OutcomeExpired {
			t.Fatalf("Status = %s, want expired", r.Status)
		}
	})

	t.Run("partial window stays open", func(t *testing.T) {
		r := Resolve(contracts.DirectionLong, l, quiet(4), 10)
		if r.Status != contracts.OutcomeStillOpen {
			t.Fatalf("Status = %s, want still_open", r.Status)
		}
	})

	t.Run("no candles stays open", func(t *testing.T) {
		r := Resolve(contracts.DirectionLong, l, nil, 10)
		if r.Status != contracts.OutcomeStillOpen || r.Reason != "no_forward_candles" {
			t.Fatalf("got %+v", r)
		}
	})

	t.Run("hit beyond window does not count", func(t *testing.T) {
		candles := quiet(10)
		candles = append(candles, bar(101, 125, 100, 121)) // bar 11 hits target
		r := Resolve(contracts.DirectionLong, l, candles, 10)
		if r.Status != contracts.OutcomeExpired {
			t.Fatalf("Status = %s, want expired (hit landed after the window)", r.Status)
		}
	})
}

func TestResolvePriceScaleGuardrail(t *testing.T) {
	l := longLevels(98, 102, 90, 120)

	// first forward close 100x off the entry scale
	r := Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(10000, 10100, 9900, 10050)}, 10)
	if r.Status != contracts.OutcomeInvalid || r.Reason != "price_scale_mismatch" {
		t.Fatalf("got %+v, want invalid/price_scale_mismatch", r)
	}

	// ratio exactly at the bound stays valid
	r = Resolve(contracts.DirectionLong, l, []contracts.Candle{bar(100, 130, 99, 120)}, 10)
	if r.Status == contracts.OutcomeInvalid {
		t.Fatalf("close at 1.2x entry mid should still resolve, got %+v", r)
	}
}

func TestResolveInvalidInputs(t *testing.T) {
	if r := Resolve(contracts.DirectionNeutral, longLevels(98, 102, 90, 120), []contracts.Candle{bar(100, 101, 99, 100)}, 10); r.Status != contracts.OutcomeInvalid {
		t.Fatalf("neutral direction should be invalid, got %s", r.Status)
	}
	badLevels := longLevels(98, 102, 105, 120) // stop above entry on a long
	if r := Resolve(contracts.DirectionLong, badLevels, []contracts.Candle{bar(100, 101, 99, 100)}, 10); r.Status != contracts.OutcomeInvalid {
		t.Fatalf("broken levels should be invalid, got %s", r.Status)
	}
}
