package rings

import "github.com/wonny/argus/v1/internal/contracts"

// Bias ring: alignment bonus is smaller than the opposition penalty on
// purpose, fighting an external bias read should hurt more than riding
// one helps.
const (
	biasAlignBonus     = 15.0
	biasOpposePenalty  = 25.0
	biasMagnitudeBlend = 0.3
)

// BiasScore projects an external directional reading onto the setup's
// direction. A nil reading is neutral 50 with note no_bias_data.
func BiasScore(reading *contracts.BiasReading, dir contracts.Direction) (int, []string) {
	if reading == nil {
		return 50, []string{"no_bias_data"}
	}

	conf := float64(reading.Confidence) / 100
	if conf < 0 {
		conf = 0
	} else if conf > 1 {
		conf = 1
	}

	score := 50.0
	var notes []string
	switch {
	case reading.Stance == "neutral" || dir == contracts.DirectionNeutral:
		notes = append(notes, "bias_neutral")
	case (reading.Stance == "bullish" && dir == contracts.DirectionLong) ||
		(reading.Stance == "bearish" && dir == contracts.DirectionShort):
		score += biasAlignBonus * conf
	default:
		score -= biasOpposePenalty * conf
		notes = append(notes, "bias_opposed")
	}

	// magnitude is an optional secondary strength signal
	if reading.Magnitude != nil {
		mag := float64(clampScore(float64(*reading.Magnitude)))
		score = (1-biasMagnitudeBlend)*score + biasMagnitudeBlend*mag
	}
	return clampScore(score), notes
}
