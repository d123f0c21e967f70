package contracts

import "time"

// Timeframe identifies a candle aggregation interval
type Timeframe string

const (
	Timeframe15m Timeframe = "15m"
	Timeframe1H  Timeframe = "1H"
	Timeframe4H  Timeframe = "4H"
	Timeframe1D  Timeframe = "1D"
	Timeframe1W  Timeframe = "1W"
)

// Duration returns the bar interval, 0 for unknown timeframes
func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case Timeframe15m:
		return 15 * time.Minute
	case Timeframe1H:
		return time.Hour
	case Timeframe4H:
		return 4 * time.Hour
	case Timeframe1D:
		return 24 * time.Hour
	case Timeframe1W:
		return 7 * 24 * time.Hour
	}
	return 0
}

// Candle is one OHLCV bar. Immutable once stored; unique per
// (asset, timeframe, timestamp).
type Candle struct {
	AssetID   string    `json:"asset_id"`
	Timeframe Timeframe `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
	Source    string    `json:"source"`
}

// Bullish reports whether the candle closed above its open
func (c Candle) Bullish() bool {
	return c.Close > c.Open
}

// Bearish reports whether the candle closed below its open
func (c Candle) Bearish() bool {
	return c.Close < c.Open
}

// Doji reports whether open and close are equal
func (c Candle) Doji() bool {
	return c.Close == c.Open
}

// Range returns high minus low
func (c Candle) Range() float64 {
	return c.High - c.Low
}

// Mid returns the midpoint of the candle's range
func (c Candle) Mid() float64 {
	return (c.High + c.Low) / 2
}
