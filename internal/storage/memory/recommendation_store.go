package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// RecommendationStore is an in-memory implementation of storage.RecommendationStore.
type RecommendationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeRecommendation // keyed by composite key
}

// NewRecommendationStore creates a new in-memory recommendation store.
func NewRecommendationStore() *RecommendationStore {
	return &RecommendationStore{
		data: make(map[string]*domain.TradeRecommendation),
	}
}

// recommendationKey generates a unique key for a recommendation.
func recommendationKey(poolID string, createdAt int64) string {
	return fmt.Sprintf("%s|%d", poolID, createdAt)
}

func copyRecommendation(r *domain.TradeRecommendation) *domain.TradeRecommendation {
	cp := *r
	if r.Reasoning != nil {
		cp.Reasoning = append([]string(nil), r.Reasoning...)
	}
	return &cp
}

// Insert adds a new recommendation. Returns ErrDuplicateKey if exists.
func (s *RecommendationStore) Insert(_ context.Context, r *domain.TradeRecommendation) error {
	if r == nil || r.PoolID == "" {
		return storage.ErrInvalidInput
	}

	key := recommendationKey(r.PoolID, r.CreatedAt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copyRecommendation(r)
	return nil
}

// GetByPool retrieves all recommendations for a pool, ordered by creation time ASC.
func (s *RecommendationStore) GetByPool(_ context.Context, poolID string) ([]*domain.TradeRecommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecommendation
	for _, r := range s.data {
		if r.PoolID == poolID {
			result = append(result, copyRecommendation(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt < result[j].CreatedAt
	})

	return result, nil
}

// GetRecent retrieves the most recent recommendations, newest first, capped at limit.
func (s *RecommendationStore) GetRecent(_ context.Context, limit int) ([]*domain.TradeRecommendation, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeRecommendation
	for _, r := range s.data {
		result = append(result, copyRecommendation(r))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt > result[j].CreatedAt
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ storage.RecommendationStore = (*RecommendationStore)(nil)
