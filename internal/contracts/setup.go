package contracts

import (
	"fmt"
	"time"
)

// ====== Enums ======

// Profile is the trading horizon a setup targets.
type Profile string

const (
	ProfileScalp    Profile = "scalp"
	ProfileIntraday Profile = "intraday"
	ProfileSwing    Profile = "swing"
	ProfilePosition Profile = "position"
)

// Direction of the proposed trade.
type Direction string

const (
	DirectionLong    Direction = "long"
	DirectionShort   Direction = "short"
	DirectionNeutral Direction = "neutral"
)

// Grade assigned by the playbook gate chain.
type Grade string

const (
	GradeA       Grade = "A"
	GradeB       Grade = "B"
	GradeNoTrade Grade = "NO_TRADE"
)

// Decision derived from grade, block category and staleness.
type Decision string

const (
	DecisionTrade   Decision = "TRADE"
	DecisionWatch   Decision = "WATCH"
	DecisionBlocked Decision = "BLOCKED"
	DecisionUnknown Decision = "UNKNOWN"
)

// BlockCategory classifies a NO_TRADE reason. Soft blocks are
// conditions that can resolve on their own (chop, unconfirmed move);
// hard blocks are structural (stale data, invalid levels).
type BlockCategory string

const (
	BlockNone BlockCategory = ""
	BlockSoft BlockCategory = "soft"
	BlockHard BlockCategory = "hard"
)

// ====== Ring scores ======

// Ring names. 여섯 개 링이 하나의 셋업 점수를 구성한다.
type Ring string

const (
	RingTrend      Ring = "trend"
	RingEvent      Ring = "event"
	RingBias       Ring = "bias"
	RingSentiment  Ring = "sentiment"
	RingOrderflow  Ring = "orderflow"
	RingConfidence Ring = "confidence"
)

// RingScores holds the six 0-100 scores for one setup.
// 50 is always the neutral "no signal" value.
type RingScores struct {
	Trend      int `json:"trend"`
	Event      int `json:"event"`
	Bias       int `json:"bias"`
	Sentiment  int `json:"sentiment"`
	Orderflow  int `json:"orderflow"`
	Confidence int `json:"confidence"`
}

// Validate checks every score is within [0, 100]
func (r RingScores) Validate() error {
	for ring, v := range map[Ring]int{
		RingTrend: r.Trend, RingEvent: r.Event, RingBias: r.Bias,
		RingSentiment: r.Sentiment, RingOrderflow: r.Orderflow,
		RingConfidence: r.Confidence,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("ring %s score %d out of range [0,100]", ring, v)
		}
	}
	return nil
}

// ====== Levels ======

// Levels carries the numeric trade plan for a setup. Entry is a band,
// stop and target are single prices. All prices share the asset's
// native scale.
type Levels struct {
	EntryLow   float64 `json:"entry_low"`
	EntryHigh  float64 `json:"entry_high"`
	StopLoss   float64 `json:"stop_loss"`
	TakeProfit float64 `json:"take_profit"`
	RiskReward float64 `json:"risk_reward"`
	Volatility string  `json:"volatility"` // low | medium | high
}

// EntryMid is the midpoint of the entry band
func (l Levels) EntryMid() float64 {
	return (l.EntryLow + l.EntryHigh) / 2
}

// Validate checks level ordering for the given direction.
func (l Levels) Validate(dir Direction) error {
	if l.EntryLow > l.EntryHigh {
		return fmt.Errorf("entry band inverted: %.5f > %.5f", l.EntryLow, l.EntryHigh)
	}
	switch dir {
	case DirectionLong:
		if l.StopLoss >= l.EntryLow {
			return fmt.Errorf("long stop %.5f not below entry %.5f", l.StopLoss, l.EntryLow)
		}
		if l.TakeProfit <= l.EntryHigh {
			return fmt.Errorf("long target %.5f not above entry %.5f", l.TakeProfit, l.EntryHigh)
		}
	case DirectionShort:
		if l.StopLoss <= l.EntryHigh {
			return fmt.Errorf("short stop %.5f not above entry %.5f", l.StopLoss, l.EntryHigh)
		}
		if l.TakeProfit >= l.EntryLow {
			return fmt.Errorf("short target %.5f not below entry %.5f", l.TakeProfit, l.EntryLow)
		}
	}
	return nil
}

// ====== Setup ======

// Setup is one scored, gated and decided trade candidate inside a
// snapshot. This is the single normalized shape: every producer and
// consumer in the engine works with this type, never with raw rows.
type Setup struct {
	ID            string              `json:"id"`
	SnapshotID    string              `json:"snapshot_id"`
	AssetID       string              `json:"asset_id"`
	Symbol        string              `json:"symbol"`
	AssetClass    AssetClass          `json:"asset_class"`
	Timeframe     Timeframe           `json:"timeframe"`
	Profile       Profile             `json:"profile"`
	Direction     Direction           `json:"direction"`
	Levels        Levels              `json:"levels"`
	Rings         RingScores          `json:"rings"`
	RingNotes     map[Ring][]string   `json:"ring_notes,omitempty"`
	PlaybookID    string              `json:"playbook_id"`
	Grade         Grade               `json:"grade"`
	Decision      Decision            `json:"decision"`
	BlockCategory BlockCategory       `json:"block_category,omitempty"`
	WatchSegment  string              `json:"watch_segment,omitempty"`
	Rationale     []string            `json:"rationale,omitempty"`
	NoTradeReason string              `json:"no_trade_reason,omitempty"`
	Stale         bool                `json:"stale"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// Key identifies a setup within its snapshot for outcome upserts
func (s Setup) Key() string {
	return s.SnapshotID + "|" + s.ID
}
