package rings

import "github.com/wonny/argus/v1/internal/contracts"

// SentimentScore blends the external sentiment reading with the trend
// and bias rings so a lone sentiment spike cannot dominate. No reading
// is neutral 50 with note low_conviction.
func SentimentScore(reading *contracts.SentimentReading, dir contracts.Direction, trendScore, biasScore int) (int, []string) {
	if reading == nil {
		return 50, []string{"low_conviction"}
	}

	ext := float64(clampScore(float64(reading.Score)))

	// 방향 보정: short 셋업은 외부 점수를 뒤집어 읽는다
	if dir == contracts.DirectionShort {
		ext = 100 - ext
	}

	score := 0.6*ext + 0.25*float64(biasScore) + 0.15*float64(trendScore)

	var notes []string
	if len(reading.Sources) <= 1 {
		notes = append(notes, "single_source")
	}
	if score > 40 && score < 60 {
		notes = append(notes, "low_conviction")
	}
	return clampScore(score), notes
}
