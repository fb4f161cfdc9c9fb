package scoring

import (
	"fmt"
	"sync"
	"time"

	"solana-flow-bot/internal/domain"
)

// Default risk thresholds.
const (
	DefaultMinLiquidity       = 10000.0 // quote units treated as TVL floor
	DefaultImbalanceThreshold = 0.8     // reserve ratio below this is penalized
	highRiskThreshold         = 75.0    // pools above this are remembered as high risk
)

// RiskConfig configures the RiskAnalyzer.
type RiskConfig struct {
	MinLiquidity       float64
	ImbalanceThreshold float64
}

// DefaultRiskConfig returns the default risk configuration.
func DefaultRiskConfig() RiskConfig {
	return RiskConfig{
		MinLiquidity:       DefaultMinLiquidity,
		ImbalanceThreshold: DefaultImbalanceThreshold,
	}
}

// RiskAssessment is the result of analyzing one pool.
type RiskAssessment struct {
	Score    float64 // 0-100, lower is safer
	Warnings []string
}

// RiskAnalyzer scores pools for risk. Lower score = lower risk.
type RiskAnalyzer struct {
	config RiskConfig
	now    func() time.Time

	mu       sync.Mutex
	highRisk map[string]struct{}
}

// NewRiskAnalyzer creates a new RiskAnalyzer.
func NewRiskAnalyzer(config RiskConfig) *RiskAnalyzer {
	if config.MinLiquidity <= 0 {
		config.MinLiquidity = DefaultMinLiquidity
	}
	if config.ImbalanceThreshold <= 0 {
		config.ImbalanceThreshold = DefaultImbalanceThreshold
	}
	return &RiskAnalyzer{
		config:   config,
		now:      time.Now,
		highRisk: make(map[string]struct{}),
	}
}

// WithClock overrides the analyzer clock. Used by tests.
func (r *RiskAnalyzer) WithClock(now func() time.Time) *RiskAnalyzer {
	r.now = now
	return r
}

// AnalyzePool scores a pool's risk profile from liquidity depth, reserve
// balance, activity status and age. Never fails; degraded inputs raise
// the score instead.
func (r *RiskAnalyzer) AnalyzePool(pool *domain.PoolRecord) RiskAssessment {
	var score float64
	var warnings []string

	// Liquidity risk: linear penalty up to +50 below the TVL floor.
	tvl := pool.QuoteAmount
	if tvl < r.config.MinLiquidity {
		ratio := tvl / r.config.MinLiquidity
		penalty := 50 * (1 - ratio)
		if penalty < 0 {
			penalty = 0
		}
		score += penalty
		warnings = append(warnings, fmt.Sprintf("low liquidity: %.0f below %.0f floor", tvl, r.config.MinLiquidity))
	}

	// Reserve balance risk: up to +25 for heavily imbalanced pools.
	if pool.BaseAmount > 0 && pool.QuoteAmount > 0 {
		ratio := pool.BaseAmount / pool.QuoteAmount
		if ratio > 1 {
			ratio = 1 / ratio
		}
		if ratio < r.config.ImbalanceThreshold {
			penalty := 25 * (1 - ratio/r.config.ImbalanceThreshold)
			score += penalty
			warnings = append(warnings, fmt.Sprintf("imbalanced reserves: ratio %.2f", ratio))
		}
	} else {
		// Empty side; small flat penalty.
		score += 5
		warnings = append(warnings, "one-sided reserves")
	}

	// Activity status risk.
	if pool.Status != domain.PoolStatusOnline {
		score += 10
		warnings = append(warnings, fmt.Sprintf("pool status %q", pool.Status))
	}

	// Age risk: very new pools are riskier.
	if pool.CreationTime > 0 {
		ageDays := float64(r.now().Unix()-pool.CreationTime) / 86400
		switch {
		case ageDays < 1:
			score += 10
			warnings = append(warnings, "pool younger than 1 day")
		case ageDays < 7:
			score += 5
			warnings = append(warnings, "pool younger than 7 days")
		}
	}

	if score > 100 {
		score = 100
	}

	if score > highRiskThreshold {
		r.mu.Lock()
		r.highRisk[pool.ID] = struct{}{}
		r.mu.Unlock()
	}

	return RiskAssessment{Score: score, Warnings: warnings}
}

// IsHighRisk reports whether a pool has previously scored above the
// high-risk threshold.
func (r *RiskAnalyzer) IsHighRisk(poolID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.highRisk[poolID]
	return ok
}

// IsPoolEligible checks basic liquidity eligibility. Pools holding SOL
// or USDC qualify at a quarter of the standard floor.
func (r *RiskAnalyzer) IsPoolEligible(pool *domain.PoolRecord) bool {
	if pool.QuoteAmount >= r.config.MinLiquidity {
		return true
	}

	hasQualityToken := pool.BaseToken.Mint == domain.MintSOL ||
		pool.QuoteToken.Mint == domain.MintSOL ||
		pool.BaseToken.Mint == domain.MintUSDC ||
		pool.QuoteToken.Mint == domain.MintUSDC

	if hasQualityToken {
		return pool.QuoteAmount >= r.config.MinLiquidity*0.25
	}

	return false
}
