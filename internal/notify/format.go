package notify

import (
	"fmt"
	"html"
	"strings"

	"solana-flow-bot/internal/domain"
)

// FormatOpportunity renders an opportunity as a Telegram HTML message.
func FormatOpportunity(opp *domain.PoolOpportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s/%s</b>\n",
		html.EscapeString(opp.BaseSymbol), html.EscapeString(opp.QuoteSymbol))
	fmt.Fprintf(&b, "Pattern: <code>%s</code>\n", opp.Pattern.Pattern)
	fmt.Fprintf(&b, "Rate: %.2f/s | Score: %.1f\n", opp.Pattern.Rate, opp.Score)
	fmt.Fprintf(&b, "Liquidity: %.0f\n", opp.Liquidity)
	if opp.RiskScore != nil {
		fmt.Fprintf(&b, "Risk: %.1f\n", *opp.RiskScore)
	}
	for _, w := range opp.Warnings {
		fmt.Fprintf(&b, "⚠️ %s\n", html.EscapeString(w))
	}
	fmt.Fprintf(&b, "Pool: <code>%s</code>", html.EscapeString(opp.PoolID))
	return b.String()
}

// FormatRecommendation renders a recommendation as a Telegram HTML message.
func FormatRecommendation(rec *domain.TradeRecommendation) string {
	icon := "⏸"
	switch rec.Recommendation {
	case domain.RecommendBuy:
		icon = "🟢"
	case domain.RecommendSell:
		icon = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s %s</b> — %s\n",
		icon, rec.Recommendation, html.EscapeString(rec.TokenSymbol), rec.Decision)
	fmt.Fprintf(&b, "Confidence: %.1f | Risk: %s\n", rec.Confidence, rec.RiskLevel)
	if rec.Decision == domain.DecisionYes {
		fmt.Fprintf(&b, "Amount: %.4f SOL | Expected return: %.4f SOL\n",
			rec.TradingAmountSOL, rec.ExpectedReturn)
	}
	for _, reason := range rec.Reasoning {
		fmt.Fprintf(&b, "• %s\n", html.EscapeString(reason))
	}
	fmt.Fprintf(&b, "Pool: <code>%s</code>", html.EscapeString(rec.PoolID))
	return b.String()
}

// FormatKOLAlert renders a KOL alert as a Telegram HTML message.
func FormatKOLAlert(alert *domain.KOLAlert) string {
	action := "sold"
	if alert.Trade.IsBuy {
		action = "bought"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 <b>%s</b> %s %s\n",
		html.EscapeString(alert.KOLName), action, html.EscapeString(alert.Trade.TokenSymbol))
	fmt.Fprintf(&b, "Value: $%.2f\n", alert.Trade.ValueUSD())
	fmt.Fprintf(&b, "Confidence: %.2f | Correlation: %.2f\n", alert.Confidence, alert.Correlation)
	fmt.Fprintf(&b, "Mint: <code>%s</code>", html.EscapeString(alert.Trade.TokenMint))
	return b.String()
}
