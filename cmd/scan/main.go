// Package main runs a one-shot liquidity flow scan: it samples the pool feed
// for a fixed number of ticks, then prints prioritized pools and the trade
// recommendations the bot would emit.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"solana-flow-bot/internal/config"
	"solana-flow-bot/internal/decision"
	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/feed"
	"solana-flow-bot/internal/feed/stub"
	"solana-flow-bot/internal/flow"
	"solana-flow-bot/internal/scoring"
)

func main() {
	endpoint := flag.String("endpoint", config.DefaultAggregatorURL, "Pool aggregator base URL")
	ticks := flag.Int("ticks", 18, "Number of sampling ticks")
	interval := flag.Duration("interval", 5*time.Second, "Delay between ticks")
	top := flag.Int("top", 10, "Maximum pools to print")
	demo := flag.Bool("demo", false, "Scan synthetic demo pools instead of the live feed")
	flag.Parse()

	if *ticks < 2 {
		fmt.Fprintln(os.Stderr, "Error: --ticks must be at least 2 to measure a rate")
		os.Exit(1)
	}

	ctx := context.Background()

	var source feed.Source
	var opts []flow.Option

	// Demo mode replays scripted pools against a synthetic clock, so the
	// scan finishes immediately and stays deterministic.
	clock := newScanClock(*ticks, *interval, *demo)
	if *demo {
		source = stub.NewSource(demoSteps(*ticks, *interval, clock.start)...)
		opts = append(opts, flow.WithClock(clock.Now))
	} else {
		source = feed.NewClient(*endpoint)
	}

	analyzer := flow.NewAnalyzer(flow.DefaultConfig(), opts...)
	risk := scoring.NewRiskAnalyzer(scoring.DefaultRiskConfig())
	engine := decision.NewEngine(decision.DefaultConfig(), nil)
	if *demo {
		engine = engine.WithClock(clock.Now)
	}

	byID := make(map[string]domain.PoolRecord)

	for tick := 1; tick <= *ticks; tick++ {
		pools, err := source.Pools(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching pools (tick %d/%d): %v\n", tick, *ticks, err)
			os.Exit(1)
		}

		for i := range pools {
			analyzer.AddSample(&pools[i])
			byID[pools[i].ID] = pools[i]
		}
		fmt.Printf("tick %d/%d: sampled %d pools\n", tick, *ticks, len(pools))

		if tick < *ticks {
			clock.Tick()
		}
	}

	ranked := analyzer.PrioritizedPools()
	if len(ranked) > *top {
		ranked = ranked[:*top]
	}

	fmt.Printf("\n%-4s %-14s %-12s %-20s %10s %8s\n", "#", "POOL", "PAIR", "PATTERN", "RATE/S", "AGE")
	for i, rank := range ranked {
		fmt.Printf("%-4d %-14s %-12s %-20s %10.2f %7.0fs\n",
			i+1, shorten(rank.PoolID), rank.BaseSymbol+"/"+rank.QuoteSymbol,
			rank.Result.Pattern, rank.Result.Rate, rank.Result.AgeSeconds)
	}

	fmt.Println("\nRecommendations:")
	for _, rank := range ranked {
		pool, ok := byID[rank.PoolID]
		if !ok {
			continue
		}

		assessment := risk.AnalyzePool(&pool)
		score := scoring.Score(rank.Result.Pattern, rank.Result.Rate)

		opp := &domain.PoolOpportunity{
			PoolID:      pool.ID,
			BaseSymbol:  pool.BaseToken.Symbol,
			QuoteSymbol: pool.QuoteToken.Symbol,
			Pattern:     rank.Result,
			Liquidity:   pool.TotalLiquidity(),
			Score:       score,
			RiskScore:   &assessment.Score,
			Warnings:    assessment.Warnings,
			DetectedAt:  clock.Now().UnixMilli(),
		}

		rec := engine.Recommend(opp)
		fmt.Printf("\n%s/%s (%s): %s %s, confidence %.0f, risk %s\n",
			rec.TokenSymbol, pool.QuoteToken.Symbol, shorten(pool.ID),
			rec.Decision, rec.Recommendation, rec.Confidence, rec.RiskLevel)
		for _, reason := range rec.Reasoning {
			fmt.Printf("  - %s\n", reason)
		}
	}
}

// scanClock is real time online and a stepped synthetic clock in demo mode.
type scanClock struct {
	demo     bool
	interval time.Duration
	start    time.Time
	current  time.Time
}

func newScanClock(ticks int, interval time.Duration, demo bool) *scanClock {
	start := time.Now().Add(-time.Duration(ticks-1) * interval)
	return &scanClock{demo: demo, interval: interval, start: start, current: start}
}

func (c *scanClock) Now() time.Time {
	if c.demo {
		return c.current
	}
	return time.Now()
}

// Tick advances the synthetic clock, or sleeps between live polls.
func (c *scanClock) Tick() {
	if c.demo {
		c.current = c.current.Add(c.interval)
		return
	}
	time.Sleep(c.interval)
}

// demoSteps scripts three pools: one accumulating fast, one steady, one
// draining.
func demoSteps(ticks int, interval time.Duration, start time.Time) [][]domain.PoolRecord {
	creation := start.Unix()
	steps := make([][]domain.PoolRecord, ticks)
	for i := 0; i < ticks; i++ {
		t := float64(i) * interval.Seconds()
		steps[i] = []domain.PoolRecord{
			demoPool("demo-accelerating", "FAST", creation, 40000+25*t*t),
			demoPool("demo-steady", "SLOW", creation, 60000+120*t),
			demoPool("demo-draining", "DRAIN", creation, 90000-200*t),
		}
	}
	return steps
}

func demoPool(id, symbol string, creation int64, liquidity float64) domain.PoolRecord {
	return domain.PoolRecord{
		ID:           id,
		BaseToken:    domain.TokenInfo{Mint: "mint-" + id, Symbol: symbol, Decimals: 9},
		QuoteToken:   domain.TokenInfo{Mint: domain.MintSOL, Symbol: "SOL", Decimals: 9},
		BaseAmount:   liquidity / 2,
		QuoteAmount:  liquidity / 2,
		Status:       domain.PoolStatusOnline,
		CreationTime: creation,
	}
}

func shorten(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[:12] + "…"
}
