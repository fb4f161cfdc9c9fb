package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// KOLTradeStore is an in-memory implementation of storage.KOLTradeStore.
type KOLTradeStore struct {
	mu   sync.RWMutex
	data map[string]*domain.KOLTrade // keyed by composite key
}

// NewKOLTradeStore creates a new in-memory KOL trade store.
func NewKOLTradeStore() *KOLTradeStore {
	return &KOLTradeStore{
		data: make(map[string]*domain.KOLTrade),
	}
}

// kolTradeKey generates a unique key for a trade.
func kolTradeKey(wallet, txSignature string) string {
	return fmt.Sprintf("%s|%s", wallet, txSignature)
}

// Insert adds a new trade. Returns ErrDuplicateKey if exists.
func (s *KOLTradeStore) Insert(_ context.Context, t *domain.KOLTrade) error {
	if t == nil || t.Wallet == "" || t.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	key := kolTradeKey(t.Wallet, t.TxSignature)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	cp := *t
	s.data[key] = &cp
	return nil
}

// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
func (s *KOLTradeStore) GetByWallet(_ context.Context, wallet string) ([]*domain.KOLTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.KOLTrade
	for _, t := range s.data {
		if t.Wallet == wallet {
			cp := *t
			result = append(result, &cp)
		}
	}

	sortKOLTrades(result)
	return result, nil
}

// GetByToken retrieves all trades for a token mint, ordered by timestamp ASC.
func (s *KOLTradeStore) GetByToken(_ context.Context, mint string) ([]*domain.KOLTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.KOLTrade
	for _, t := range s.data {
		if t.TokenMint == mint {
			cp := *t
			result = append(result, &cp)
		}
	}

	sortKOLTrades(result)
	return result, nil
}

func sortKOLTrades(trades []*domain.KOLTrade) {
	sort.Slice(trades, func(i, j int) bool {
		if trades[i].Timestamp != trades[j].Timestamp {
			return trades[i].Timestamp < trades[j].Timestamp
		}
		return trades[i].TxSignature < trades[j].TxSignature
	})
}

var _ storage.KOLTradeStore = (*KOLTradeStore)(nil)
