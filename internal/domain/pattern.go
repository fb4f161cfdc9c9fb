package domain

// FlowPattern classifies the liquidity momentum of a pool.
type FlowPattern string

// Flow pattern labels.
const (
	PatternStrongAccumulation FlowPattern = "STRONG_ACCUMULATION"
	PatternAccelerating       FlowPattern = "ACCELERATING"
	PatternSteady             FlowPattern = "STEADY"
	PatternDecelerating       FlowPattern = "DECELERATING"
	PatternDistribution       FlowPattern = "DISTRIBUTION"
	PatternNeutral            FlowPattern = "NEUTRAL"
	PatternTooOld             FlowPattern = "TOO_OLD"
	PatternUnknown            FlowPattern = "UNKNOWN"
)

// patternPriority ranks patterns for pool prioritization.
// Higher value = more interesting. TOO_OLD and UNKNOWN are excluded
// from prioritization entirely.
var patternPriority = map[FlowPattern]int{
	PatternStrongAccumulation: 5,
	PatternAccelerating:       4,
	PatternSteady:             3,
	PatternNeutral:            2,
	PatternDecelerating:       1,
	PatternDistribution:       0,
}

// Priority returns the fixed ranking for a pattern, -1 for patterns
// that do not participate in prioritization.
func (p FlowPattern) Priority() int {
	if rank, ok := patternPriority[p]; ok {
		return rank
	}
	return -1
}

// PatternResult is the classified momentum signal for one pool.
// Derived on demand from a PoolSnapshot, never stored.
type PatternResult struct {
	Pattern    FlowPattern
	Rate       float64 // short-window flow rate, liquidity units per second
	AgeSeconds float64 // pool age at classification time
}
