package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// OpportunityStore is an in-memory implementation of storage.OpportunityStore.
type OpportunityStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PoolOpportunity // keyed by composite key
}

// NewOpportunityStore creates a new in-memory opportunity store.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{
		data: make(map[string]*domain.PoolOpportunity),
	}
}

// opportunityKey generates a unique key for an opportunity.
func opportunityKey(poolID string, detectedAt int64) string {
	return fmt.Sprintf("%s|%d", poolID, detectedAt)
}

func copyOpportunity(o *domain.PoolOpportunity) *domain.PoolOpportunity {
	cp := *o
	if o.RiskScore != nil {
		risk := *o.RiskScore
		cp.RiskScore = &risk
	}
	if o.Warnings != nil {
		cp.Warnings = append([]string(nil), o.Warnings...)
	}
	return &cp
}

// Insert adds a new opportunity. Returns ErrDuplicateKey if exists.
func (s *OpportunityStore) Insert(_ context.Context, o *domain.PoolOpportunity) error {
	if o == nil || o.PoolID == "" {
		return storage.ErrInvalidInput
	}

	key := opportunityKey(o.PoolID, o.DetectedAt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[key] = copyOpportunity(o)
	return nil
}

// GetByPool retrieves all opportunities for a pool, ordered by detection time ASC.
func (s *OpportunityStore) GetByPool(_ context.Context, poolID string) ([]*domain.PoolOpportunity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PoolOpportunity
	for _, o := range s.data {
		if o.PoolID == poolID {
			result = append(result, copyOpportunity(o))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DetectedAt < result[j].DetectedAt
	})

	return result, nil
}

// GetRecent retrieves the most recent opportunities, newest first, capped at limit.
func (s *OpportunityStore) GetRecent(_ context.Context, limit int) ([]*domain.PoolOpportunity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PoolOpportunity
	for _, o := range s.data {
		result = append(result, copyOpportunity(o))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DetectedAt > result[j].DetectedAt
	})

	if len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

var _ storage.OpportunityStore = (*OpportunityStore)(nil)
