package kol

import (
	"context"
	"errors"
	"io"
	"log"
	"math"
	"sync"
	"time"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/notify"
	"solana-flow-bot/internal/observability"
	"solana-flow-bot/internal/solana"
	"solana-flow-bot/internal/storage"
)

// Watcher polling defaults.
const (
	DefaultWatchInterval  = 30 * time.Second
	DefaultSignatureLimit = 20

	maxSeenSignatures = 4096
)

// TradeSource yields trades made by a wallet since the previous poll.
type TradeSource interface {
	RecentTrades(ctx context.Context, wallet string) ([]domain.KOLTrade, error)
}

// TokenQuote resolves a token's display symbol and USD price. Implementations
// return ok=false when the token is unknown.
type TokenQuote func(ctx context.Context, mint string) (symbol string, priceUSD float64, ok bool)

// SignatureSource derives trades from on-chain transaction history: it polls
// getSignaturesForAddress per wallet, fetches each new transaction, and infers
// a trade from the wallet's SPL token balance changes. SOL and USDC legs are
// treated as the paying side of a swap, not the traded token.
type SignatureSource struct {
	rpc   solana.RPCClient
	quote TokenQuote
	limit int

	mu   sync.Mutex
	seen map[string]struct{}
}

var _ TradeSource = (*SignatureSource)(nil)

// SourceOption configures SignatureSource.
type SourceOption func(*SignatureSource)

// WithTokenQuote sets the symbol/price resolver for traded tokens.
func WithTokenQuote(quote TokenQuote) SourceOption {
	return func(s *SignatureSource) {
		s.quote = quote
	}
}

// WithSignatureLimit sets how many recent signatures are inspected per wallet.
func WithSignatureLimit(limit int) SourceOption {
	return func(s *SignatureSource) {
		s.limit = limit
	}
}

// NewSignatureSource creates a trade source over an RPC client.
func NewSignatureSource(rpc solana.RPCClient, opts ...SourceOption) *SignatureSource {
	s := &SignatureSource{
		rpc:   rpc,
		limit: DefaultSignatureLimit,
		seen:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecentTrades returns trades from signatures not seen before, oldest first.
func (s *SignatureSource) RecentTrades(ctx context.Context, wallet string) ([]domain.KOLTrade, error) {
	sigs, err := s.rpc.GetSignaturesForAddress(ctx, wallet, &solana.SignaturesOpts{Limit: s.limit})
	if err != nil {
		return nil, err
	}

	var trades []domain.KOLTrade
	for _, sig := range sigs {
		if sig.Err != nil || s.isSeen(sig.Signature) {
			continue
		}

		tx, err := s.rpc.GetTransaction(ctx, sig.Signature)
		if err != nil {
			// Left unmarked so the next poll retries the fetch.
			continue
		}
		s.markSeen(sig.Signature)

		trade := s.tradeFromTransaction(ctx, wallet, tx)
		if trade == nil {
			continue
		}
		if trade.Timestamp == 0 && sig.BlockTime != nil {
			trade.Timestamp = *sig.BlockTime
		}
		trades = append(trades, *trade)
	}

	// RPC returns newest first; callers want chronological order.
	for i, j := 0, len(trades)-1; i < j; i, j = i+1, j-1 {
		trades[i], trades[j] = trades[j], trades[i]
	}
	return trades, nil
}

func (s *SignatureSource) isSeen(signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[signature]
	return ok
}

func (s *SignatureSource) markSeen(signature string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.seen) >= maxSeenSignatures {
		// Recycled signatures are still deduplicated downstream by the
		// trade store's (wallet, tx_signature) key.
		s.seen = make(map[string]struct{})
	}
	s.seen[signature] = struct{}{}
}

// tradeFromTransaction infers a trade from the wallet's token balance deltas,
// nil when the transaction failed or moved no tracked token.
func (s *SignatureSource) tradeFromTransaction(ctx context.Context, wallet string, tx *solana.Transaction) *domain.KOLTrade {
	if tx == nil || tx.Meta == nil || tx.Meta.Err != nil {
		return nil
	}

	deltas := make(map[string]float64)
	for _, b := range tx.Meta.PreTokenBalances {
		if b.Owner == wallet {
			deltas[b.Mint] -= b.UIAmount
		}
	}
	for _, b := range tx.Meta.PostTokenBalances {
		if b.Owner == wallet {
			deltas[b.Mint] += b.UIAmount
		}
	}

	// The traded token is the largest balance move that is not a quote leg.
	var mint string
	var delta float64
	for m, d := range deltas {
		if m == domain.MintSOL || m == domain.MintUSDC {
			continue
		}
		if math.Abs(d) > math.Abs(delta) {
			mint, delta = m, d
		}
	}
	if mint == "" || delta == 0 {
		return nil
	}

	symbol, price := "UNKNOWN", 0.0
	if s.quote != nil {
		if sym, p, ok := s.quote(ctx, mint); ok {
			symbol, price = sym, p
		}
	}

	return &domain.KOLTrade{
		Wallet:      wallet,
		TokenMint:   mint,
		TokenSymbol: symbol,
		Amount:      math.Abs(delta),
		PriceUSD:    price,
		IsBuy:       delta > 0,
		TxSignature: tx.Signature,
		Timestamp:   tx.BlockTime,
	}
}

// Watcher periodically pulls wallet trades from a source, feeds them through
// the tracker, persists them, and delivers the resulting alerts.
type Watcher struct {
	source   TradeSource
	tracker  *Tracker
	notifier notify.Notifier
	store    storage.KOLTradeStore
	interval time.Duration
	logger   *log.Logger
}

// WatcherOption configures Watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets the polling interval.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithTradeStore persists processed trades.
func WithTradeStore(store storage.KOLTradeStore) WatcherOption {
	return func(w *Watcher) {
		w.store = store
	}
}

// WithWatcherLogger sets the watcher's logger.
func WithWatcherLogger(logger *log.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// NewWatcher creates a watcher over the tracker's configured wallets.
func NewWatcher(source TradeSource, tracker *Tracker, notifier notify.Notifier, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		source:   source,
		tracker:  tracker,
		notifier: notifier,
		interval: DefaultWatchInterval,
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Printf("[kol] watcher started, interval=%s wallets=%d", w.interval, len(w.tracker.Wallets()))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Printf("[kol] watcher stopped")
			return ctx.Err()
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll checks every tracked wallet once.
func (w *Watcher) Poll(ctx context.Context) {
	for _, wallet := range w.tracker.Wallets() {
		trades, err := w.source.RecentTrades(ctx, wallet)
		if err != nil {
			w.logger.Printf("[kol] fetch trades for %s: %v", wallet, err)
			continue
		}
		for _, trade := range trades {
			w.process(ctx, trade)
		}
	}
}

func (w *Watcher) process(ctx context.Context, trade domain.KOLTrade) {
	observability.RecordKOLTrade()

	if w.store != nil {
		err := w.store.Insert(ctx, &trade)
		if errors.Is(err, storage.ErrDuplicateKey) {
			// Already processed in a previous run.
			return
		}
		if err != nil {
			w.logger.Printf("[kol] store trade %s: %v", trade.TxSignature, err)
		}
	}

	alert := w.tracker.ProcessTrade(trade)
	if alert == nil {
		return
	}

	observability.RecordKOLAlert()
	if err := w.notifier.NotifyKOLAlert(ctx, alert); err != nil {
		w.logger.Printf("[kol] notify alert %s: %v", trade.TxSignature, err)
	}
}
