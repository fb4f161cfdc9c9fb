// Package monitor runs the periodic detection loop: sample pools, classify
// liquidity flow, score and gate opportunities, and fan results out to
// notifiers, stores, and the execution placeholder.
package monitor

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"time"

	"solana-flow-bot/internal/decision"
	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/feed"
	"solana-flow-bot/internal/flow"
	"solana-flow-bot/internal/jito"
	"solana-flow-bot/internal/notify"
	"solana-flow-bot/internal/observability"
	"solana-flow-bot/internal/scoring"
	"solana-flow-bot/internal/solana"
	"solana-flow-bot/internal/storage"
)

// Defaults for the polling loop.
const (
	DefaultInterval      = 5 * time.Second
	DefaultAlertCooldown = 5 * time.Minute
)

// alertPatterns are the classifications that trigger opportunity alerts.
var alertPatterns = map[domain.FlowPattern]bool{
	domain.PatternStrongAccumulation: true,
	domain.PatternAccelerating:       true,
}

// Stores groups the optional persistence sinks. Nil fields are skipped.
type Stores struct {
	Opportunities   storage.OpportunityStore
	Recommendations storage.RecommendationStore
	Samples         storage.SampleArchive
}

// Monitor drives the sequential detection loop. Within a tick every stage
// runs in order; a slow stage delays the next tick rather than overlapping.
type Monitor struct {
	source   feed.Source
	analyzer *flow.Analyzer
	risk     *scoring.RiskAnalyzer
	engine   *decision.Engine
	notifier notify.Notifier
	stores   Stores

	bundler jito.Bundler
	tips    *jito.TipCalculator

	cache    interface{ Invalidate() }
	interval time.Duration
	cooldown time.Duration
	logger   *log.Logger
	now      func() time.Time

	lastAlert map[string]time.Time
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithAlertCooldown sets the minimum spacing between alerts for one pool.
func WithAlertCooldown(d time.Duration) Option {
	return func(m *Monitor) { m.cooldown = d }
}

// WithLogger sets the monitor logger.
func WithLogger(logger *log.Logger) Option {
	return func(m *Monitor) { m.logger = logger }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithStores attaches persistence sinks.
func WithStores(stores Stores) Option {
	return func(m *Monitor) { m.stores = stores }
}

// WithCache registers a pool cache to invalidate when new pools appear.
func WithCache(cache interface{ Invalidate() }) Option {
	return func(m *Monitor) { m.cache = cache }
}

// WithExecutor attaches the bundle submission placeholder. Recommendations
// that pass the decision gate are forwarded as single-entry bundles with a
// dynamically calculated tip.
func WithExecutor(bundler jito.Bundler, tips *jito.TipCalculator) Option {
	return func(m *Monitor) {
		m.bundler = bundler
		m.tips = tips
	}
}

// New creates a Monitor. source, analyzer, risk, engine, and notifier are
// required; everything else is optional.
func New(source feed.Source, analyzer *flow.Analyzer, risk *scoring.RiskAnalyzer, engine *decision.Engine, notifier notify.Notifier, opts ...Option) *Monitor {
	m := &Monitor{
		source:    source,
		analyzer:  analyzer,
		risk:      risk,
		engine:    engine,
		notifier:  notifier,
		interval:  DefaultInterval,
		cooldown:  DefaultAlertCooldown,
		logger:    log.New(io.Discard, "", 0),
		now:       time.Now,
		lastAlert: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run ticks until the context is cancelled. Tick errors are logged and the
// loop continues; only context cancellation stops it.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Printf("[monitor] starting, interval %s", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		if err := m.Tick(ctx); err != nil {
			m.logger.Printf("[monitor] tick failed: %v", err)
		}

		select {
		case <-ctx.Done():
			m.logger.Printf("[monitor] stopping: %v", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one detection pass.
func (m *Monitor) Tick(ctx context.Context) error {
	pools, err := m.source.Pools(ctx)
	if err != nil {
		observability.RecordTickError("fetch")
		return fmt.Errorf("fetch pools: %w", err)
	}

	byID := make(map[string]*domain.PoolRecord, len(pools))
	for i := range pools {
		pool := &pools[i]
		byID[pool.ID] = pool

		m.analyzer.AddSample(pool)
		m.archiveSample(ctx, pool)
	}
	observability.DefaultMetrics.PoolsTracked.Set(float64(m.analyzer.PoolCount()))
	observability.DefaultMetrics.SamplesRecorded.Add(float64(len(pools)))

	for _, rank := range m.analyzer.PrioritizedPools() {
		observability.RecordPattern(string(rank.Result.Pattern))

		pool, ok := byID[rank.PoolID]
		if !ok {
			// Tracked pool missing from this fetch; skip until it returns.
			continue
		}

		m.evaluate(ctx, rank, pool)
	}

	observability.RecordTick(m.now().Unix())
	return nil
}

// evaluate scores one ranked pool and pushes it through alerting, the
// decision gate, and the execution placeholder.
func (m *Monitor) evaluate(ctx context.Context, rank flow.PoolRank, pool *domain.PoolRecord) {
	if !alertPatterns[rank.Result.Pattern] {
		return
	}
	if !m.cooldownElapsed(rank.PoolID) {
		return
	}

	assessment := m.risk.AnalyzePool(pool)
	score := scoring.Score(rank.Result.Pattern, rank.Result.Rate)
	riskScore := assessment.Score

	opp := &domain.PoolOpportunity{
		PoolID:      rank.PoolID,
		BaseSymbol:  rank.BaseSymbol,
		QuoteSymbol: rank.QuoteSymbol,
		Pattern:     rank.Result,
		Liquidity:   pool.TotalLiquidity(),
		Score:       score,
		RiskScore:   &riskScore,
		Warnings:    assessment.Warnings,
		DetectedAt:  m.now().UnixMilli(),
	}

	m.lastAlert[rank.PoolID] = m.now()
	observability.RecordOpportunity()
	m.logger.Printf("[monitor] opportunity %s %s/%s pattern=%s score=%.1f risk=%.1f",
		opp.PoolID, opp.BaseSymbol, opp.QuoteSymbol, opp.Pattern.Pattern, opp.Score, riskScore)

	if err := m.notifier.NotifyOpportunity(ctx, opp); err != nil {
		observability.RecordTickError("notify")
		m.logger.Printf("[monitor] notify opportunity: %v", err)
	}
	m.storeOpportunity(ctx, opp)

	rec := m.engine.Recommend(opp)
	observability.RecordRecommendation(rec.Decision, rec.Confidence)

	if rec.Decision != domain.DecisionYes {
		return
	}

	m.logger.Printf("[monitor] recommendation %s %s confidence=%.1f", rec.PoolID, rec.Recommendation, rec.Confidence)
	if err := m.notifier.NotifyRecommendation(ctx, rec); err != nil {
		observability.RecordTickError("notify")
		m.logger.Printf("[monitor] notify recommendation: %v", err)
	}
	m.storeRecommendation(ctx, rec)
	m.submitBundle(ctx, rec)
}

// cooldownElapsed reports whether the pool may alert again.
func (m *Monitor) cooldownElapsed(poolID string) bool {
	last, ok := m.lastAlert[poolID]
	if !ok {
		return true
	}
	return m.now().Sub(last) >= m.cooldown
}

// submitBundle forwards a YES recommendation to the configured bundler.
// The payload is a marker transaction: instruction building stayed out of
// scope, matching the reference system's documented placeholder.
func (m *Monitor) submitBundle(ctx context.Context, rec *domain.TradeRecommendation) {
	if m.bundler == nil || m.tips == nil {
		return
	}

	expectedProfit := rec.ExpectedReturn - rec.TradingAmountSOL
	if expectedProfit < 0 {
		expectedProfit = 0
	}
	tipSOL := m.tips.Calculate(expectedProfit)
	tipLamports := int64(tipSOL * solana.LamportsPerSOL)

	marker := base64.StdEncoding.EncodeToString([]byte("flowbot:" + rec.PoolID))
	receipt, err := m.bundler.SubmitBundle(ctx, []string{marker}, tipLamports)
	if err != nil {
		observability.RecordTickError("execute")
		m.logger.Printf("[monitor] bundle submission failed for %s: %v", rec.PoolID, err)
		return
	}

	m.tips.Record(tipSOL)
	observability.RecordBundle(receipt.Status, tipSOL)
	m.logger.Printf("[monitor] bundle %s submitted for %s tip=%.6f SOL status=%s",
		receipt.BundleID, rec.PoolID, tipSOL, receipt.Status)
}

// HandlePoolEvents consumes new-pool events from the watcher, invalidating
// the pool cache so the next tick sees the fresh pool. Returns when the
// channel closes or the context is cancelled.
func (m *Monitor) HandlePoolEvents(ctx context.Context, events <-chan solana.PoolEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.logger.Printf("[monitor] new pool detected: %s (tx %s)", ev.PoolID, ev.TxSignature)
			if m.cache != nil {
				m.cache.Invalidate()
			}
		}
	}
}

func (m *Monitor) archiveSample(ctx context.Context, pool *domain.PoolRecord) {
	if m.stores.Samples == nil {
		return
	}
	sample := domain.PoolSample{TimestampMs: m.now().UnixMilli(), Liquidity: pool.TotalLiquidity()}
	if err := m.stores.Samples.Archive(ctx, pool.ID, []domain.PoolSample{sample}); err != nil {
		observability.RecordTickError("archive")
		m.logger.Printf("[monitor] archive sample for %s: %v", pool.ID, err)
	}
}

func (m *Monitor) storeOpportunity(ctx context.Context, opp *domain.PoolOpportunity) {
	if m.stores.Opportunities == nil {
		return
	}
	if err := m.stores.Opportunities.Insert(ctx, opp); err != nil {
		observability.RecordTickError("store")
		m.logger.Printf("[monitor] store opportunity for %s: %v", opp.PoolID, err)
	}
}

func (m *Monitor) storeRecommendation(ctx context.Context, rec *domain.TradeRecommendation) {
	if m.stores.Recommendations == nil {
		return
	}
	if err := m.stores.Recommendations.Insert(ctx, rec); err != nil {
		observability.RecordTickError("store")
		m.logger.Printf("[monitor] store recommendation for %s: %v", rec.PoolID, err)
	}
}
