package playbook

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// overridesFile is the yaml shape for threshold tuning. Only the
// fields present in the file override the builtin values.
type overridesFile struct {
	Playbooks map[string]thresholdOverride `yaml:"playbooks"`
}

type thresholdOverride struct {
	MinTrend          *int     `yaml:"min_trend"`
	MinOrderflow      *int     `yaml:"min_orderflow"`
	MinConfidence     *int     `yaml:"min_confidence"`
	MaxEvent          *int     `yaml:"max_event"`
	MinRRR            *float64 `yaml:"min_rrr"`
	GradeATrendMargin *int     `yaml:"grade_a_trend_margin"`
	GradeAConfidence  *int     `yaml:"grade_a_confidence"`
}

// LoadOverrides applies threshold overrides from a yaml file onto the
// registry. Unknown yaml keys and unknown playbook IDs are config
// errors. Returns the sha256 of the file so callers can log which
// tuning is live.
func (r *Registry) LoadOverrides(path string) (hash string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read playbook overrides: %w", err)
	}

	var f overridesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return "", fmt.Errorf("parse playbook overrides %s: %w", path, err)
	}

	for id, ov := range f.Playbooks {
		p, err := r.Get(id)
		if err != nil {
			return "", fmt.Errorf("overrides reference %w", err)
		}
		applyOverride(&p.Thresholds, ov)
		if err := validateThresholds(p.Thresholds); err != nil {
			return "", fmt.Errorf("playbook %s after overrides: %w", id, err)
		}
	}

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12], nil
}

func applyOverride(th *Thresholds, ov thresholdOverride) {
	if ov.MinTrend != nil {
		th.MinTrend = *ov.MinTrend
	}
	if ov.MinOrderflow != nil {
		th.MinOrderflow = *ov.MinOrderflow
	}
	if ov.MinConfidence != nil {
		th.MinConfidence = *ov.MinConfidence
	}
	if ov.MaxEvent != nil {
		th.MaxEvent = *ov.MaxEvent
	}
	if ov.MinRRR != nil {
		th.MinRRR = *ov.MinRRR
	}
	if ov.GradeATrendMargin != nil {
		th.GradeATrendMargin = *ov.GradeATrendMargin
	}
	if ov.GradeAConfidence != nil {
		th.GradeAConfidence = *ov.GradeAConfidence
	}
}

func validateThresholds(th Thresholds) error {
	for name, v := range map[string]int{
		"min_trend": th.MinTrend, "min_orderflow": th.MinOrderflow,
		"min_confidence": th.MinConfidence, "max_event": th.MaxEvent,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%s %d out of range [0,100]", name, v)
		}
	}
	if th.MinRRR <= 0 {
		return fmt.Errorf("min_rrr must be positive, got %v", th.MinRRR)
	}
	return nil
}
