// Package kol tracks trades of Key Opinion Leader wallets and scores them
// as trading signals.
package kol

import (
	"io"
	"log"
	"sync"
	"time"

	"solana-flow-bot/internal/domain"
)

// Defaults for trade significance and scoring.
const (
	DefaultAlertThresholdUSD = 1000.0
	DefaultMinConfidence     = 0.7

	tradeWindow       = 24 * time.Hour
	correlationWindow = time.Hour

	// size score saturates at this notional value
	sizeScoreCapUSD = 10000.0
	// activity score saturates at this many trades in the window
	activityScoreCap = 100
)

// Config configures the tracker.
type Config struct {
	// Wallets maps KOL names to wallet addresses.
	Wallets map[string]string
	// AlertThresholdUSD is the minimum notional value for an alert.
	AlertThresholdUSD float64
	// MinConfidence filters alerts below this confidence.
	MinConfidence float64
}

// DefaultConfig returns tracker defaults with no wallets.
func DefaultConfig() Config {
	return Config{
		Wallets:           make(map[string]string),
		AlertThresholdUSD: DefaultAlertThresholdUSD,
		MinConfidence:     DefaultMinConfidence,
	}
}

// Tracker maintains rolling 24h per-wallet trade windows and emits alerts
// for significant trades.
type Tracker struct {
	config Config
	logger *log.Logger
	now    func() time.Time

	mu     sync.RWMutex
	trades map[string][]domain.KOLTrade // wallet -> window-pruned trades
}

// Option configures Tracker.
type Option func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithClock overrides the tracker's time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a tracker for the configured wallets.
func NewTracker(config Config, opts ...Option) *Tracker {
	if config.AlertThresholdUSD <= 0 {
		config.AlertThresholdUSD = DefaultAlertThresholdUSD
	}
	if config.MinConfidence <= 0 {
		config.MinConfidence = DefaultMinConfidence
	}

	t := &Tracker{
		config: config,
		logger: log.New(io.Discard, "", 0),
		now:    time.Now,
		trades: make(map[string][]domain.KOLTrade),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ProcessTrade records a trade and returns an alert when it is significant
// enough, or nil.
func (t *Tracker) ProcessTrade(trade domain.KOLTrade) *domain.KOLAlert {
	t.mu.Lock()
	t.trades[trade.Wallet] = append(t.trades[trade.Wallet], trade)
	t.pruneLocked(trade.Wallet)
	t.mu.Unlock()

	if trade.ValueUSD() < t.config.AlertThresholdUSD {
		return nil
	}

	alert := t.buildAlert(trade)
	if alert.Confidence < t.config.MinConfidence {
		return nil
	}

	action := "sold"
	if trade.IsBuy {
		action = "bought"
	}
	t.logger.Printf("[kol] alert: %s %s %s $%.2f confidence=%.2f correlation=%.2f",
		alert.KOLName, action, trade.TokenSymbol, trade.ValueUSD(), alert.Confidence, alert.Correlation)

	return alert
}

// pruneLocked drops trades older than the rolling window for one wallet.
func (t *Tracker) pruneLocked(wallet string) {
	cutoff := t.now().Add(-tradeWindow).Unix()
	trades := t.trades[wallet]
	kept := trades[:0]
	for _, tr := range trades {
		if tr.Timestamp > cutoff {
			kept = append(kept, tr)
		}
	}
	t.trades[wallet] = kept
}

// buildAlert scores a significant trade.
func (t *Tracker) buildAlert(trade domain.KOLTrade) *domain.KOLAlert {
	name := "Unknown KOL"
	for n, addr := range t.config.Wallets {
		if addr == trade.Wallet {
			name = n
			break
		}
	}

	sizeScore := trade.ValueUSD() / sizeScoreCapUSD
	if sizeScore > 1 {
		sizeScore = 1
	}

	t.mu.RLock()
	activityScore := float64(len(t.trades[trade.Wallet])) / activityScoreCap
	t.mu.RUnlock()
	if activityScore > 1 {
		activityScore = 1
	}

	return &domain.KOLAlert{
		KOLName:     name,
		Trade:       trade,
		Confidence:  (sizeScore + activityScore) / 2,
		Correlation: t.correlation(trade),
	}
}

// correlation is the share of other tracked KOLs that made the same-direction
// trade on the token within the last hour.
func (t *Tracker) correlation(trade domain.KOLTrade) float64 {
	total := len(t.config.Wallets)
	if total == 0 {
		return 0
	}

	cutoff := trade.Timestamp - int64(correlationWindow.Seconds())
	similar := 0

	t.mu.RLock()
	defer t.mu.RUnlock()

	for wallet, trades := range t.trades {
		if wallet == trade.Wallet {
			continue
		}
		for _, tr := range trades {
			if tr.Timestamp > cutoff && tr.TokenMint == trade.TokenMint && tr.IsBuy == trade.IsBuy {
				similar++
				break
			}
		}
	}

	return float64(similar) / float64(total)
}

// TokenSentiment returns the share of active wallets net-buying the token,
// 0.5 when no wallet has traded it.
func (t *Tracker) TokenSentiment(mint string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	positive, total := 0, 0
	for _, trades := range t.trades {
		net := 0.0
		traded := false
		for _, tr := range trades {
			if tr.TokenMint != mint {
				continue
			}
			traded = true
			if tr.IsBuy {
				net += tr.Amount
			} else {
				net -= tr.Amount
			}
		}
		if traded {
			total++
			if net > 0 {
				positive++
			}
		}
	}

	if total == 0 {
		return 0.5
	}
	return float64(positive) / float64(total)
}

// Wallets returns the tracked wallet addresses.
func (t *Tracker) Wallets() []string {
	wallets := make([]string, 0, len(t.config.Wallets))
	for _, addr := range t.config.Wallets {
		wallets = append(wallets, addr)
	}
	return wallets
}

// TradeCount returns the number of windowed trades for a wallet.
func (t *Tracker) TradeCount(wallet string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.trades[wallet])
}
