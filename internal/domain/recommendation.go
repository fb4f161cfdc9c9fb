package domain

// Trade decision constants.
const (
	DecisionYes = "YES"
	DecisionNo  = "NO"
)

// Recommendation label constants.
const (
	RecommendBuy  = "BUY"
	RecommendSell = "SELL"
	RecommendHold = "HOLD"
)

// Risk level constants.
const (
	RiskLow    = "LOW"
	RiskMedium = "MEDIUM"
	RiskHigh   = "HIGH"
)

// TradeRecommendation is the final output of the recommendation engine.
// Recomputed every polling cycle per qualifying opportunity; transient.
type TradeRecommendation struct {
	PoolID           string
	TokenSymbol      string
	Decision         string   // YES | NO
	Recommendation   string   // BUY | SELL | HOLD
	Confidence       float64  // 0-100
	TradingAmountSOL float64  // configured trade size
	ExpectedReturn   float64  // simplified linear projection, SOL
	RiskLevel        string   // LOW | MEDIUM | HIGH
	Reasoning        []string // ordered, human-readable
	CreatedAt        int64    // Unix timestamp in milliseconds
}
