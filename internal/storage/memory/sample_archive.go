package memory

import (
	"context"
	"sort"
	"sync"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// SampleArchive is an in-memory implementation of storage.SampleArchive.
// Samples are value types, so appends copy implicitly.
type SampleArchive struct {
	mu   sync.RWMutex
	data map[string][]domain.PoolSample // keyed by pool ID
}

// NewSampleArchive creates a new in-memory sample archive.
func NewSampleArchive() *SampleArchive {
	return &SampleArchive{
		data: make(map[string][]domain.PoolSample),
	}
}

// Archive appends a batch of samples for a pool.
func (s *SampleArchive) Archive(_ context.Context, poolID string, samples []domain.PoolSample) error {
	if poolID == "" {
		return storage.ErrInvalidInput
	}
	if len(samples) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[poolID] = append(s.data[poolID], samples...)
	return nil
}

// GetByPool retrieves all archived samples for a pool, ordered by timestamp ASC.
func (s *SampleArchive) GetByPool(_ context.Context, poolID string) ([]domain.PoolSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := append([]domain.PoolSample(nil), s.data[poolID]...)

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

// GetByTimeRange retrieves samples for a pool within [start, end] (inclusive).
func (s *SampleArchive) GetByTimeRange(_ context.Context, poolID string, start, end int64) ([]domain.PoolSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PoolSample
	for _, sample := range s.data[poolID] {
		if sample.TimestampMs >= start && sample.TimestampMs <= end {
			result = append(result, sample)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].TimestampMs < result[j].TimestampMs
	})

	return result, nil
}

var _ storage.SampleArchive = (*SampleArchive)(nil)
