package domain

// TokenInfo describes one side of an AMM pool.
type TokenInfo struct {
	Mint     string // token mint address (base58)
	Symbol   string
	Name     string
	Decimals int
}

// PoolRecord is a single pool as returned by the aggregator feed.
type PoolRecord struct {
	ID           string // pool address (AMM ID)
	Version      int
	BaseToken    TokenInfo
	QuoteToken   TokenInfo
	LPMint       string
	BaseVault    string
	QuoteVault   string
	BaseAmount   float64 // base reserve, decimal-adjusted
	QuoteAmount  float64 // quote reserve, decimal-adjusted
	FeeRateBps   int     // fee in basis points (30 = 0.3%)
	Status       string  // "online" | ...
	CreationTime int64   // Unix timestamp in seconds
}

// TotalLiquidity returns the combined reserve used for flow analysis.
func (p *PoolRecord) TotalLiquidity() float64 {
	return p.BaseAmount + p.QuoteAmount
}

// Pool status constants.
const (
	PoolStatusOnline = "online"
)

// Well-known mint addresses.
const (
	MintSOL  = "So11111111111111111111111111111111111111112"
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// PoolSample is a point-in-time total-reserve observation.
type PoolSample struct {
	TimestampMs int64   // observation time, Unix milliseconds
	Liquidity   float64 // base + quote reserves at that time
}

// PoolSnapshot tracks the rolling sample window for one pool.
// Created on first observation, lives for the process lifetime.
type PoolSnapshot struct {
	PoolID       string
	BaseSymbol   string
	QuoteSymbol  string
	CreationTime int64        // pool creation, Unix seconds
	FirstSeenMs  int64        // first observation, Unix milliseconds
	Samples      []PoolSample // time-ordered, pruned to the analysis window
}
