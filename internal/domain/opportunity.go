package domain

// PoolOpportunity combines a classified pattern with pool metadata and
// scoring. Created per polling iteration for pools under the max-age
// threshold.
type PoolOpportunity struct {
	PoolID      string
	BaseSymbol  string
	QuoteSymbol string
	Pattern     PatternResult
	Liquidity   float64  // total reserve at detection time
	Score       float64  // 0-100 opportunity score
	RiskScore   *float64 // 0-100, nil when risk analysis unavailable
	Warnings    []string // risk warnings, if any
	DetectedAt  int64    // Unix timestamp in milliseconds
}

// Risk returns the risk score or 0 when not set.
func (o *PoolOpportunity) Risk() float64 {
	if o.RiskScore == nil {
		return 0
	}
	return *o.RiskScore
}
