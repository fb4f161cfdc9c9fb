package backtest

import (
	"context"
	"fmt"

	"solana-flow-bot/internal/domain"
)

// DefaultMaxHoldMs bounds how long the flow strategy stays in a position.
const DefaultMaxHoldMs = 30 * 60 * 1000

// FlowStrategy mirrors the live monitor's alerting policy: enter on the
// accumulation patterns the monitor alerts on, exit when the flow turns or
// after a maximum hold.
type FlowStrategy struct {
	maxHoldMs int64
	entryMs   int64
}

var _ Strategy = (*FlowStrategy)(nil)

// NewFlowStrategy creates the default pattern-following strategy.
// maxHoldMs <= 0 selects the default.
func NewFlowStrategy(maxHoldMs int64) *FlowStrategy {
	if maxHoldMs <= 0 {
		maxHoldMs = DefaultMaxHoldMs
	}
	return &FlowStrategy{maxHoldMs: maxHoldMs}
}

// Name returns the strategy identifier.
func (s *FlowStrategy) Name() string {
	return "flow"
}

// OnTick enters on STRONG_ACCUMULATION and ACCELERATING, exits on
// DECELERATING, DISTRIBUTION or hold expiry.
func (s *FlowStrategy) OnTick(_ context.Context, tick *Tick) (*Signal, error) {
	pattern := tick.Result.Pattern

	if !tick.InPosition {
		if pattern == domain.PatternStrongAccumulation || pattern == domain.PatternAccelerating {
			s.entryMs = tick.TimestampMs
			return &Signal{
				Action:      ActionEnter,
				Reason:      fmt.Sprintf("%s at %.2f/s", pattern, tick.Result.Rate),
				TimestampMs: tick.TimestampMs,
			}, nil
		}
		return nil, nil
	}

	if pattern == domain.PatternDecelerating || pattern == domain.PatternDistribution {
		return &Signal{
			Action:      ActionExit,
			Reason:      fmt.Sprintf("flow turned %s", pattern),
			TimestampMs: tick.TimestampMs,
		}, nil
	}
	if tick.TimestampMs-s.entryMs >= s.maxHoldMs {
		return &Signal{
			Action:      ActionExit,
			Reason:      "max hold reached",
			TimestampMs: tick.TimestampMs,
		}, nil
	}
	return nil, nil
}
