// Package scoring maps classified flow patterns to bounded opportunity
// scores and analyzes pool risk.
package scoring

import "solana-flow-bot/internal/domain"

// patternBaseScore is the fixed base score per pattern.
var patternBaseScore = map[domain.FlowPattern]float64{
	domain.PatternStrongAccumulation: 80,
	domain.PatternAccelerating:       65,
	domain.PatternSteady:             50,
	domain.PatternNeutral:            35,
	domain.PatternDecelerating:       25,
	domain.PatternDistribution:       0,
}

// maxRateBonus caps the rate-proportional score bonus.
const maxRateBonus = 20.0

// Score maps (pattern, rate) to a 0-100 opportunity score: the pattern
// base score plus a rate-proportional bonus capped at 20 points.
// Deterministic, no side effects.
func Score(pattern domain.FlowPattern, rate float64) float64 {
	base := patternBaseScore[pattern] // unknown patterns score from 0

	bonus := rate / 100 * maxRateBonus
	if bonus < 0 {
		bonus = 0
	}
	if bonus > maxRateBonus {
		bonus = maxRateBonus
	}

	score := base + bonus
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
