package playbook

import "github.com/wonny/argus/v1/internal/contracts"

// Builtin playbook IDs.
const (
	IDGold    = "gold-v1"
	IDIndex   = "index-v1"
	IDCrypto  = "crypto-v1"
	IDFX      = "fx-v1"
	IDGeneric = "generic-v1"
)

// builtinPlaybooks constructs the default family playbooks. Gate order
// within each chain is deliberate: regime first, then confirmation,
// then family-specific risk gates, levels always last.
func builtinPlaybooks() []*Playbook {
	return []*Playbook{
		{
			ID:     IDGold,
			Label:  "Gold momentum",
			Family: contracts.ClassGold,
			Thresholds: Thresholds{
				MinTrend: 58, MinOrderflow: 55, MinConfidence: 55,
				MaxEvent: 78, MinRRR: 1.8,
				GradeATrendMargin: 10, GradeAConfidence: 70,
			},
			// 금은 이벤트 민감도가 높아 event_risk 게이트가 confirmation 앞
			Gates: []Gate{regimeGate(), eventRiskGate(), confirmationGate(), convictionGate(), levelsGate(), rrrGate()},
		},
		{
			ID:     IDIndex,
			Label:  "Index trend-follow",
			Family: contracts.ClassIndex,
			Thresholds: Thresholds{
				MinTrend: 60, MinOrderflow: 55, MinConfidence: 58,
				MaxEvent: 80, MinRRR: 2.0,
				GradeATrendMargin: 8, GradeAConfidence: 72,
			},
			Gates: []Gate{regimeGate(), confirmationGate(), eventRiskGate(), convictionGate(), levelsGate(), rrrGate()},
		},
		{
			ID:     IDCrypto,
			Label:  "Crypto breakout",
			Family: contracts.ClassCrypto,
			Thresholds: Thresholds{
				MinTrend: 62, MinOrderflow: 60, MinConfidence: 60,
				MaxEvent: 85, MinRRR: 2.2,
				GradeATrendMargin: 10, GradeAConfidence: 75,
			},
			Gates: []Gate{regimeGate(), confirmationGate(), convictionGate(), levelsGate(), rrrGate()},
		},
		{
			ID:     IDFX,
			Label:  "FX session range",
			Family: contracts.ClassFX,
			Thresholds: Thresholds{
				MinTrend: 56, MinOrderflow: 54, MinConfidence: 55,
				MaxEvent: 75, MinRRR: 1.6,
				GradeATrendMargin: 12, GradeAConfidence: 70,
			},
			Gates: []Gate{regimeGate(), eventRiskGate(), confirmationGate(), convictionGate(), levelsGate(), rrrGate()},
		},
		{
			ID:     IDGeneric,
			Label:  "Generic fallback",
			Family: contracts.ClassGeneric,
			Thresholds: Thresholds{
				MinTrend: 60, MinOrderflow: 55, MinConfidence: 60,
				MaxEvent: 80, MinRRR: 2.0,
				GradeATrendMargin: 10, GradeAConfidence: 75,
			},
			Gates: []Gate{regimeGate(), confirmationGate(), eventRiskGate(), convictionGate(), levelsGate(), rrrGate()},
		},
	}
}
