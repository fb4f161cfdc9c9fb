package backtest

import "context"

// StubStrategy is a no-op strategy for testing.
// It collects ticks for verification without generating signals.
type StubStrategy struct {
	ticks []*Tick
}

var _ Strategy = (*StubStrategy)(nil)

// NewStubStrategy creates a new stub strategy.
func NewStubStrategy() *StubStrategy {
	return &StubStrategy{}
}

// OnTick collects ticks for verification. Always returns nil (no action).
func (s *StubStrategy) OnTick(_ context.Context, tick *Tick) (*Signal, error) {
	s.ticks = append(s.ticks, tick)
	return nil, nil
}

// Name returns the strategy identifier.
func (s *StubStrategy) Name() string {
	return "stub"
}

// Ticks returns collected ticks for test verification.
func (s *StubStrategy) Ticks() []*Tick {
	return s.ticks
}
