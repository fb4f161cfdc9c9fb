// Package stub provides a scripted pool feed for tests and offline scans.
package stub

import (
	"context"
	"sync"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/feed"
)

// Source implements feed.Source from scripted pool snapshots. Successive
// Pools calls advance through the script; the final step repeats once the
// script is exhausted.
type Source struct {
	mu    sync.Mutex
	steps [][]domain.PoolRecord
	calls int

	// Err, when set, is returned by every call.
	Err error
}

var _ feed.Source = (*Source)(nil)

// NewSource creates a scripted source. Each step is the pool list returned
// by one Pools call.
func NewSource(steps ...[]domain.PoolRecord) *Source {
	return &Source{steps: steps}
}

// Pools returns the current scripted step and advances.
func (s *Source) Pools(_ context.Context) ([]domain.PoolRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	if len(s.steps) == 0 {
		return nil, nil
	}

	idx := s.calls
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	s.calls++

	step := s.steps[idx]
	pools := make([]domain.PoolRecord, len(step))
	copy(pools, step)
	return pools, nil
}

// Pool returns a pool by ID from the current step.
func (s *Source) Pool(ctx context.Context, id string) (*domain.PoolRecord, error) {
	pools, err := s.Pools(ctx)
	if err != nil {
		return nil, err
	}
	// Pools advanced the script; step the counter back so lookups do not
	// consume steps.
	s.mu.Lock()
	s.calls--
	s.mu.Unlock()

	for i := range pools {
		if pools[i].ID == id {
			return &pools[i], nil
		}
	}
	return nil, feed.ErrNotFound
}

// Calls reports how many Pools calls have been made.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
