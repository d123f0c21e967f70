package rings

import "math"

// Confidence blend weights over the derived components.
const (
	confStrengthWeight    = 0.4
	confConsistencyWeight = 0.3
	confCoherenceWeight   = 0.2
	confStabilityWeight   = 0.1
)

// ConfidenceScore condenses the five primary rings into a conviction
// score. Agreement among trend, bias, sentiment and orderflow amplifies
// it; rings pulling in opposite directions suppress it, and event
// pressure erodes stability. Neutral directional input is the
// degenerate case and stays at exactly 50.
func ConfidenceScore(trend, event, bias, sentiment, orderflow int) (int, []string) {
	// event pressure feeds stability only; strength, consistency and
	// coherence read the four directional rings
	directional := []float64{float64(trend), float64(bias), float64(sentiment), float64(orderflow)}

	// degenerate case: every directional ring sits at its neutral
	// fallback. 이벤트 링은 제외 — 조용한 캘린더 기본값이 45라서
	// 포함하면 무신호 자산이 50을 넘는 컨빅션을 받게 됨
	allNeutral := true
	for _, v := range directional {
		if v != 50 {
			allNeutral = false
			break
		}
	}
	if allNeutral {
		return 50, []string{"no_signal"}
	}

	// strength: 평균이 50에서 얼마나 떨어져 있나
	var sum float64
	for _, v := range directional {
		sum += v
	}
	mean := sum / float64(len(directional))
	strength := 50 + math.Abs(mean-50)*2
	if strength > 100 {
		strength = 100
	}

	// consistency: low dispersion across rings reads as agreement
	var variance float64
	for _, v := range directional {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / float64(len(directional)))
	consistency := 100 - stddev*2.5
	if consistency < 0 {
		consistency = 0
	}

	// coherence: directional rings on the same side of 50 amplify,
	// split sides suppress
	above, below := 0, 0
	for _, v := range directional {
		if v > 55 {
			above++
		} else if v < 45 {
			below++
		}
	}
	coherence := 50.0
	if above > 0 && below == 0 {
		coherence = 50 + float64(above)*12.5
	} else if below > 0 && above == 0 {
		coherence = 50 + float64(below)*12.5
	} else if above > 0 && below > 0 {
		coherence = 50 - float64(min(above, below))*15
	}
	if coherence > 100 {
		coherence = 100
	}
	if coherence < 0 {
		coherence = 0
	}

	// stability: 이벤트 압력이 높으면 컨빅션 약화
	stability := 100 - math.Max(0, float64(event)-50)*1.5
	if stability < 0 {
		stability = 0
	}

	score := confStrengthWeight*strength +
		confConsistencyWeight*consistency +
		confCoherenceWeight*coherence +
		confStabilityWeight*stability

	var notes []string
	if above > 0 && below > 0 {
		notes = append(notes, "ring_conflict")
	}
	return clampScore(score), notes
}
