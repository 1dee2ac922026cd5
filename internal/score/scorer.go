package score

import (
	"github.com/ppiankov/rugscan/internal/model"
)

// Band upper bounds (inclusive)
const (
	lowMax    = 30
	mediumMax = 70
)

// Scorer turns category matches into a risk score
type Scorer struct {
	weights model.Weights
}

// NewScorer creates a scorer with the given weights
func NewScorer(weights model.Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Calculate computes
//
//	value = signature_weight * suspicious_matches + blacklist_weight * any_blacklist
//
// where suspicious_matches counts matched signatures across every suspicious
// category and any_blacklist is 1 if at least one blacklist category matched.
func (s *Scorer) Calculate(matches []model.MatchResult) model.RiskScore {
	suspicious := 0
	blacklisted := false

	for _, m := range matches {
		switch m.Category.Kind {
		case model.KindSuspicious:
			suspicious += len(m.Matched)
		case model.KindBlacklist:
			if len(m.Matched) > 0 {
				blacklisted = true
			}
		}
	}

	value := suspicious * s.weights.Signature
	if blacklisted {
		value += s.weights.Blacklist
	}

	band := Classify(value)
	return model.RiskScore{
		Value:             value,
		Band:              band,
		Severity:          band.Severity(),
		Color:             band.Color(),
		SuspiciousMatches: suspicious,
		BlacklistMatched:  blacklisted,
	}
}

// Classify maps a score to its band: 0 safe, 1-30 low, 31-70 medium, >70 high
func Classify(value int) model.Band {
	switch {
	case value <= 0:
		return model.BandSafe
	case value <= lowMax:
		return model.BandLow
	case value <= mediumMax:
		return model.BandMedium
	default:
		return model.BandHigh
	}
}
