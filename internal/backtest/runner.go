package backtest

import (
	"context"
	"fmt"

	"solana-flow-bot/internal/storage"
)

// Results holds the aggregated backtest output across pools.
type Results struct {
	StrategyName     string
	StartCapitalSOL  float64
	EndCapitalSOL    float64
	TotalReturnPct   float64
	TotalTrades      int
	ProfitableTrades int
	WinRatePct       float64
	TotalProfitSOL   float64
	TotalGasSOL      float64
	MaxDrawdownPct   float64
	Pools            []*PoolResult
}

// Runner executes backtests over the sample archive.
type Runner struct {
	archive storage.SampleArchive
	config  Config
}

// NewRunner creates a new backtest runner.
func NewRunner(archive storage.SampleArchive, config Config) *Runner {
	if config.InitialCapitalSOL <= 0 {
		config.InitialCapitalSOL = DefaultInitialCapitalSOL
	}
	return &Runner{archive: archive, config: config}
}

// RunPool replays one pool's full archive through a strategy.
func (r *Runner) RunPool(ctx context.Context, poolID string, strategy Strategy) (*PoolResult, error) {
	samples, err := r.archive.GetByPool(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("load samples for %s: %w", poolID, err)
	}

	engine := NewEngine(r.config, strategy, poolID)
	return engine.Replay(ctx, samples)
}

// RunPoolRange replays one pool's samples within [start, end] milliseconds.
func (r *Runner) RunPoolRange(ctx context.Context, poolID string, start, end int64, strategy Strategy) (*PoolResult, error) {
	samples, err := r.archive.GetByTimeRange(ctx, poolID, start, end)
	if err != nil {
		return nil, fmt.Errorf("load samples for %s: %w", poolID, err)
	}

	engine := NewEngine(r.config, strategy, poolID)
	return engine.Replay(ctx, samples)
}

// Run replays every pool with a fresh strategy from the factory and
// aggregates the results into portfolio statistics.
func (r *Runner) Run(ctx context.Context, poolIDs []string, newStrategy func() Strategy) (*Results, error) {
	results := &Results{
		StartCapitalSOL: r.config.InitialCapitalSOL,
		EndCapitalSOL:   r.config.InitialCapitalSOL,
	}

	capital := r.config.InitialCapitalSOL
	peak := capital

	for _, poolID := range poolIDs {
		strategy := newStrategy()
		if results.StrategyName == "" {
			results.StrategyName = strategy.Name()
		}

		poolResult, err := r.RunPool(ctx, poolID, strategy)
		if err != nil {
			return nil, err
		}
		results.Pools = append(results.Pools, poolResult)

		for _, trade := range poolResult.Trades {
			results.TotalTrades++
			results.TotalProfitSOL += trade.ProfitLossSOL
			results.TotalGasSOL += trade.GasCostSOL
			if trade.ProfitLossSOL > 0 {
				results.ProfitableTrades++
			}

			capital += trade.ProfitLossSOL
			if capital > peak {
				peak = capital
			}
			if peak > 0 {
				drawdown := (peak - capital) / peak * 100
				if drawdown > results.MaxDrawdownPct {
					results.MaxDrawdownPct = drawdown
				}
			}
		}
	}

	results.EndCapitalSOL = capital
	if results.StartCapitalSOL > 0 {
		results.TotalReturnPct = (capital - results.StartCapitalSOL) / results.StartCapitalSOL * 100
	}
	if results.TotalTrades > 0 {
		results.WinRatePct = float64(results.ProfitableTrades) / float64(results.TotalTrades) * 100
	}

	return results, nil
}
