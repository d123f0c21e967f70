package contracts

import "time"

// Event is one scheduled macro/calendar event that can affect scoring.
// Impact: 1=low 2=medium 3=high.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Impact      int       `json:"impact"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Country     string    `json:"country,omitempty"`
	Symbols     []string  `json:"symbols,omitempty"` // empty = applies to all assets
}

// Relevant reports whether the event applies to the given symbol
func (e Event) Relevant(symbol string) bool {
	if len(e.Symbols) == 0 {
		return true
	}
	for _, s := range e.Symbols {
		if s == symbol {
			return true
		}
	}
	return false
}

// BiasReading is an externally supplied directional view for one asset.
type BiasReading struct {
	AssetID    string    `json:"asset_id"`
	Stance     string    `json:"stance"` // bullish | bearish | neutral
	Confidence int       `json:"confidence"`
	Magnitude  *int      `json:"magnitude,omitempty"` // optional 0-100 strength, blended only when present
	AsOf       time.Time `json:"as_of"`
}

// SentimentReading carries the external sentiment components for one
// asset. A nil reading (not an error) means no data is available.
type SentimentReading struct {
	AssetID    string             `json:"asset_id"`
	Score      int                `json:"score"`
	Components map[string]float64 `json:"components,omitempty"`
	Sources    []string           `json:"sources,omitempty"`
	AsOf       time.Time          `json:"as_of"`
}
