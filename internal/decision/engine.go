// Package decision turns scored pool opportunities into trade
// recommendations gated by configured thresholds.
package decision

import (
	"fmt"
	"time"

	"solana-flow-bot/internal/domain"
)

// Default gate thresholds.
const (
	DefaultMinConfidence  = 60.0
	DefaultMaxRisk        = 40.0
	DefaultMinLiquidity   = 10000.0
	DefaultMinProfitPct   = 0.5
	DefaultTradeAmountSOL = 0.02
	youngPoolBonusSeconds = 600 // pools younger than this get a confidence nudge
	lowRiskBonusThreshold = 20.0
	confidenceNudgePoints = 5.0
	mediumRiskLevelCutoff = 30.0
	highRiskLevelCutoff   = 60.0
)

// Config holds the gate thresholds for the recommendation engine.
type Config struct {
	MinConfidence  float64 // minimum confidence for a YES decision
	MaxRisk        float64 // maximum acceptable risk score
	MinLiquidity   float64 // minimum pool liquidity
	MinProfitPct   float64 // minimum estimated profit percent
	TradeAmountSOL float64 // configured trade size
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		MinConfidence:  DefaultMinConfidence,
		MaxRisk:        DefaultMaxRisk,
		MinLiquidity:   DefaultMinLiquidity,
		MinProfitPct:   DefaultMinProfitPct,
		TradeAmountSOL: DefaultTradeAmountSOL,
	}
}

// BalanceProvider reports the available wallet balance in SOL.
// A nil provider means no wallet is configured and the balance gate is
// skipped.
type BalanceProvider interface {
	BalanceSOL() (float64, error)
}

// Engine produces TradeRecommendations from PoolOpportunities.
type Engine struct {
	config  Config
	balance BalanceProvider
	now     func() time.Time
}

// NewEngine creates a new recommendation engine. balance may be nil.
func NewEngine(config Config, balance BalanceProvider) *Engine {
	if config.TradeAmountSOL <= 0 {
		config.TradeAmountSOL = DefaultTradeAmountSOL
	}
	return &Engine{
		config:  config,
		balance: balance,
		now:     time.Now,
	}
}

// WithClock overrides the engine clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Recommend evaluates one opportunity against the configured gates and
// produces a recommendation. A fresh recommendation is computed every
// polling cycle; nothing is persisted here.
func (e *Engine) Recommend(opp *domain.PoolOpportunity) *domain.TradeRecommendation {
	rec := &domain.TradeRecommendation{
		PoolID:           opp.PoolID,
		TokenSymbol:      opp.BaseSymbol,
		TradingAmountSOL: e.config.TradeAmountSOL,
		CreatedAt:        e.now().UnixMilli(),
	}

	risk := opp.Risk()

	// Confidence starts at the opportunity score, reduced by half the
	// risk score, nudged up for young pools and low-risk tokens.
	confidence := opp.Score - risk/2
	if opp.Pattern.AgeSeconds > 0 && opp.Pattern.AgeSeconds < youngPoolBonusSeconds {
		confidence += confidenceNudgePoints
	}
	if opp.RiskScore != nil && risk < lowRiskBonusThreshold {
		confidence += confidenceNudgePoints
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	rec.Confidence = confidence

	rec.Recommendation = recommendationLabel(opp.Pattern.Pattern)
	rec.RiskLevel = riskLevel(risk)
	rec.ExpectedReturn = e.expectedReturn(opp)

	// Gate conditions, all ANDed. The first failing condition forces NO.
	rec.Decision = domain.DecisionYes

	if rec.Recommendation != domain.RecommendBuy {
		rec.Decision = domain.DecisionNo
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("not a buy signal (%s pattern)", opp.Pattern.Pattern))
		return rec
	}
	rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("buy signal from %s pattern", opp.Pattern.Pattern))

	if confidence < e.config.MinConfidence {
		rec.Decision = domain.DecisionNo
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("confidence %.1f below minimum %.1f", confidence, e.config.MinConfidence))
		return rec
	}
	rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("confidence %.1f meets minimum", confidence))

	if risk > e.config.MaxRisk {
		rec.Decision = domain.DecisionNo
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("risk %.1f above maximum %.1f", risk, e.config.MaxRisk))
		return rec
	}
	rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("risk %.1f acceptable", risk))

	if opp.Liquidity < e.config.MinLiquidity {
		rec.Decision = domain.DecisionNo
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("liquidity %.0f below minimum %.0f", opp.Liquidity, e.config.MinLiquidity))
		return rec
	}
	rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("liquidity %.0f sufficient", opp.Liquidity))

	profitPct := e.estimatedProfitPct(opp)
	if profitPct < e.config.MinProfitPct {
		rec.Decision = domain.DecisionNo
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("estimated profit %.2f%% below minimum %.2f%%", profitPct, e.config.MinProfitPct))
		return rec
	}
	rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("estimated profit %.2f%%", profitPct))

	if e.balance != nil {
		balance, err := e.balance.BalanceSOL()
		if err != nil {
			// Degraded balance lookup resolves to NO rather than failing.
			rec.Decision = domain.DecisionNo
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("wallet balance unavailable: %v", err))
			return rec
		}
		if balance < e.config.TradeAmountSOL {
			rec.Decision = domain.DecisionNo
			rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("balance %.4f SOL below trade amount %.4f SOL", balance, e.config.TradeAmountSOL))
			return rec
		}
		rec.Reasoning = append(rec.Reasoning, fmt.Sprintf("balance %.4f SOL sufficient", balance))
	}

	return rec
}

// recommendationLabel maps a flow pattern to BUY/SELL/HOLD.
func recommendationLabel(pattern domain.FlowPattern) string {
	switch pattern {
	case domain.PatternStrongAccumulation, domain.PatternAccelerating, domain.PatternSteady:
		return domain.RecommendBuy
	case domain.PatternDistribution, domain.PatternDecelerating:
		return domain.RecommendSell
	default:
		return domain.RecommendHold
	}
}

// riskLevel buckets a risk score.
func riskLevel(risk float64) string {
	switch {
	case risk >= highRiskLevelCutoff:
		return domain.RiskHigh
	case risk >= mediumRiskLevelCutoff:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

// expectedReturn is a simplified linear projection of the trade outcome:
// tradeAmount * (1 + liquidityImpact*100) where liquidityImpact is the
// flow rate relative to total liquidity. Illustrative only, not an
// execution-price model.
func (e *Engine) expectedReturn(opp *domain.PoolOpportunity) float64 {
	if opp.Liquidity <= 0 {
		return 0
	}
	impact := opp.Pattern.Rate / opp.Liquidity
	return e.config.TradeAmountSOL * (1 + impact*100)
}

// estimatedProfitPct derives the profit percentage of the projection.
func (e *Engine) estimatedProfitPct(opp *domain.PoolOpportunity) float64 {
	if e.config.TradeAmountSOL <= 0 {
		return 0
	}
	ret := e.expectedReturn(opp)
	return (ret - e.config.TradeAmountSOL) / e.config.TradeAmountSOL * 100
}
