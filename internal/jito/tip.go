package jito

import (
	"sort"
	"sync"
)

// Tip calculation defaults, in SOL.
const (
	DefaultMinTip        = 0.005
	DefaultMaxTipPct     = 70.0 // of expected profit
	DefaultProfitShare   = 0.4  // base tip as share of profit
	DefaultTipMultiplier = 2.0  // applied to the competitive estimate
	DefaultTipHistory    = 50
)

// TipConfig configures TipCalculator.
type TipConfig struct {
	MinTip        float64
	MaxTipPct     float64
	ProfitShare   float64
	TipMultiplier float64
	HistorySize   int
}

// DefaultTipConfig returns the default tip parameters.
func DefaultTipConfig() TipConfig {
	return TipConfig{
		MinTip:        DefaultMinTip,
		MaxTipPct:     DefaultMaxTipPct,
		ProfitShare:   DefaultProfitShare,
		TipMultiplier: DefaultTipMultiplier,
		HistorySize:   DefaultTipHistory,
	}
}

// TipCalculator computes dynamic tips from expected profit and a bounded
// history of recently paid tips.
type TipCalculator struct {
	config TipConfig

	mu      sync.Mutex
	history []float64
}

// NewTipCalculator creates a calculator with the given config.
func NewTipCalculator(config TipConfig) *TipCalculator {
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultTipHistory
	}
	return &TipCalculator{config: config}
}

// Calculate returns the tip in SOL for a trade with the given expected
// profit. The tip is the larger of the profit share and the competitive
// estimate, capped at MaxTipPct of profit and floored at MinTip.
func (t *TipCalculator) Calculate(expectedProfit float64) float64 {
	maxTip := expectedProfit * (t.config.MaxTipPct / 100)

	// Unprofitable trade: the floor exceeds what the profit can carry.
	if t.config.MinTip > maxTip {
		return t.config.MinTip
	}

	baseTip := expectedProfit * t.config.ProfitShare
	competitive := t.competitiveEstimate() * t.config.TipMultiplier

	tip := baseTip
	if competitive > tip {
		tip = competitive
	}
	if tip > maxTip {
		tip = maxTip
	}
	if tip < t.config.MinTip {
		tip = t.config.MinTip
	}
	return tip
}

// competitiveEstimate returns the median of recent tips, floored at MinTip.
func (t *TipCalculator) competitiveEstimate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.history) == 0 {
		return t.config.MinTip
	}

	sorted := make([]float64, len(t.history))
	copy(sorted, t.history)
	sort.Float64s(sorted)

	median := sorted[len(sorted)/2]
	if median < t.config.MinTip {
		return t.config.MinTip
	}
	return median
}

// Record adds a paid tip to the bounded history.
func (t *TipCalculator) Record(tip float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.history = append(t.history, tip)
	if len(t.history) > t.config.HistorySize {
		t.history = t.history[len(t.history)-t.config.HistorySize:]
	}
}
