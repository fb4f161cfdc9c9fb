package domain

// KOLTrade is one observed trade by a tracked Key Opinion Leader wallet.
type KOLTrade struct {
	Wallet      string // wallet address (base58)
	TokenMint   string
	TokenSymbol string
	Amount      float64 // token amount
	PriceUSD    float64 // price per token at trade time
	IsBuy       bool
	TxSignature string
	Timestamp   int64 // Unix timestamp in seconds
}

// ValueUSD returns the notional value of the trade.
func (t *KOLTrade) ValueUSD() float64 {
	return t.PriceUSD * t.Amount
}

// KOLAlert is emitted for significant KOL trades.
type KOLAlert struct {
	KOLName     string
	Trade       KOLTrade
	Confidence  float64 // 0-1
	Correlation float64 // 0-1, share of other KOLs in the same trade
}
