// Package flow converts streams of per-pool reserve observations into
// classified momentum signals.
package flow

import (
	"sort"
	"sync"
	"time"

	"solana-flow-bot/internal/domain"
)

// Default analyzer configuration.
const (
	DefaultWindowSeconds = 300  // sample retention window
	DefaultMaxAgeSeconds = 2700 // pools older than this classify as TOO_OLD

	shortWindowSeconds  = 15
	mediumWindowSeconds = 60
	longWindowSeconds   = 300
)

// Config configures the Analyzer.
type Config struct {
	// WindowSeconds is the sample retention window. Samples older than
	// this are pruned on every AddSample.
	WindowSeconds int
	// MaxAgeSeconds is the pool age beyond which pools classify as TOO_OLD.
	MaxAgeSeconds int
}

// DefaultConfig returns the default analyzer configuration.
func DefaultConfig() Config {
	return Config{
		WindowSeconds: DefaultWindowSeconds,
		MaxAgeSeconds: DefaultMaxAgeSeconds,
	}
}

// Analyzer maintains rolling liquidity sample windows per pool and
// classifies flow patterns. Purely computational: no I/O, and every
// operation degrades to a zero/neutral signal instead of failing.
type Analyzer struct {
	config Config
	now    func() time.Time

	mu        sync.RWMutex
	snapshots map[string]*domain.PoolSnapshot
}

// Option configures the Analyzer.
type Option func(*Analyzer)

// WithClock sets a custom clock. Used by tests for deterministic windows.
func WithClock(now func() time.Time) Option {
	return func(a *Analyzer) {
		a.now = now
	}
}

// NewAnalyzer creates a new flow analyzer.
func NewAnalyzer(config Config, opts ...Option) *Analyzer {
	if config.WindowSeconds <= 0 {
		config.WindowSeconds = DefaultWindowSeconds
	}
	if config.MaxAgeSeconds <= 0 {
		config.MaxAgeSeconds = DefaultMaxAgeSeconds
	}

	a := &Analyzer{
		config:    config,
		now:       time.Now,
		snapshots: make(map[string]*domain.PoolSnapshot),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddSample appends a (now, base+quote) sample to the pool's snapshot,
// creating the snapshot on first sight, then prunes samples older than
// the retention window. Tolerates any non-negative reserve values.
func (a *Analyzer) AddSample(pool *domain.PoolRecord) {
	nowMs := a.now().UnixMilli()

	a.mu.Lock()
	defer a.mu.Unlock()

	snap, ok := a.snapshots[pool.ID]
	if !ok {
		snap = &domain.PoolSnapshot{
			PoolID:       pool.ID,
			BaseSymbol:   pool.BaseToken.Symbol,
			QuoteSymbol:  pool.QuoteToken.Symbol,
			CreationTime: pool.CreationTime,
			FirstSeenMs:  nowMs,
		}
		a.snapshots[pool.ID] = snap
	}

	snap.Samples = append(snap.Samples, domain.PoolSample{
		TimestampMs: nowMs,
		Liquidity:   pool.TotalLiquidity(),
	})

	// Prune samples older than the retention window.
	cutoff := nowMs - int64(a.config.WindowSeconds)*1000
	firstKept := 0
	for firstKept < len(snap.Samples) && snap.Samples[firstKept].TimestampMs < cutoff {
		firstKept++
	}
	if firstKept > 0 {
		snap.Samples = append(snap.Samples[:0], snap.Samples[firstKept:]...)
	}
}

// CalculateRate returns the flow rate (liquidity units per second) for a
// pool over the trailing windowSeconds, computed as the ordinary
// least-squares slope of liquidity vs elapsed time. Returns 0 until the
// pool has been observed for the full window, when fewer than 2 samples
// remain in the window, or when the regression is degenerate (all samples
// at the same timestamp). A pool watched for only 15s has a short-window
// rate but zero medium and long rates, so it classifies NEUTRAL rather
// than claiming a trend it has no history for.
func (a *Analyzer) CalculateRate(poolID string, windowSeconds int) float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.rateLocked(poolID, windowSeconds, a.now().UnixMilli())
}

// rateLocked computes the OLS slope. Caller must hold at least a read lock.
func (a *Analyzer) rateLocked(poolID string, windowSeconds int, nowMs int64) float64 {
	snap, ok := a.snapshots[poolID]
	if !ok {
		return 0
	}

	// The window must be fully covered by observation history.
	if nowMs-snap.FirstSeenMs < int64(windowSeconds)*1000 {
		return 0
	}

	cutoff := nowMs - int64(windowSeconds)*1000

	var recent []domain.PoolSample
	for _, s := range snap.Samples {
		if s.TimestampMs >= cutoff {
			recent = append(recent, s)
		}
	}
	if len(recent) < 2 {
		return 0
	}

	// OLS slope of liquidity vs elapsed seconds:
	// slope = (n*Σxy − Σx*Σy) / (n*Σxx − (Σx)²)
	base := recent[0].TimestampMs
	var sumX, sumY, sumXY, sumXX float64
	for _, s := range recent {
		x := float64(s.TimestampMs-base) / 1000.0
		y := s.Liquidity
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	n := float64(len(recent))
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// All samples at identical timestamps. Treated as no signal.
		return 0
	}

	return (n*sumXY - sumX*sumY) / denom
}

// DetectAccumulation classifies the pool's current flow pattern from its
// short (15s), medium (60s) and long (300s) window rates. Total over any
// snapshot: always returns a label, never fails. Unknown pools return
// UNKNOWN.
func (a *Analyzer) DetectAccumulation(poolID string) domain.PatternResult {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap, ok := a.snapshots[poolID]
	if !ok {
		return domain.PatternResult{Pattern: domain.PatternUnknown}
	}

	now := a.now()
	nowMs := now.UnixMilli()

	age := float64(now.Unix() - snap.CreationTime)
	if snap.CreationTime == 0 {
		age = 0
	}

	short := a.rateLocked(poolID, shortWindowSeconds, nowMs)
	medium := a.rateLocked(poolID, mediumWindowSeconds, nowMs)
	long := a.rateLocked(poolID, longWindowSeconds, nowMs)

	result := domain.PatternResult{
		Rate:       short,
		AgeSeconds: age,
	}

	// Classification policy, evaluated in order. Tie-breaking is implicit
	// in the branch order.
	switch {
	case age > float64(a.config.MaxAgeSeconds):
		result.Pattern = domain.PatternTooOld
	case short > medium && medium > long && long > 0:
		result.Pattern = domain.PatternStrongAccumulation
	case short > medium && medium > 0:
		result.Pattern = domain.PatternAccelerating
	case short > 0 && medium > 0:
		result.Pattern = domain.PatternSteady
	case short > 0 && medium-long < 0:
		result.Pattern = domain.PatternDecelerating
	case short < 0:
		result.Pattern = domain.PatternDistribution
	default:
		result.Pattern = domain.PatternNeutral
	}

	return result
}

// PoolRank is one entry in the prioritized pool ordering.
type PoolRank struct {
	PoolID      string
	BaseSymbol  string
	QuoteSymbol string
	Result      domain.PatternResult
}

// PrioritizedPools returns all known pools except TOO_OLD/UNKNOWN, sorted
// descending by the fixed pattern priority ranking, ties broken by
// descending rate.
func (a *Analyzer) PrioritizedPools() []PoolRank {
	a.mu.RLock()
	ids := make([]string, 0, len(a.snapshots))
	for id := range a.snapshots {
		ids = append(ids, id)
	}
	a.mu.RUnlock()

	var ranked []PoolRank
	for _, id := range ids {
		result := a.DetectAccumulation(id)
		if result.Pattern == domain.PatternTooOld || result.Pattern == domain.PatternUnknown {
			continue
		}

		a.mu.RLock()
		snap := a.snapshots[id]
		rank := PoolRank{
			PoolID:      id,
			BaseSymbol:  snap.BaseSymbol,
			QuoteSymbol: snap.QuoteSymbol,
			Result:      result,
		}
		a.mu.RUnlock()

		ranked = append(ranked, rank)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		pi := ranked[i].Result.Pattern.Priority()
		pj := ranked[j].Result.Pattern.Priority()
		if pi != pj {
			return pi > pj
		}
		return ranked[i].Result.Rate > ranked[j].Result.Rate
	})

	return ranked
}

// Snapshot returns a copy of the pool's snapshot, or nil for unknown pools.
func (a *Analyzer) Snapshot(poolID string) *domain.PoolSnapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	snap, ok := a.snapshots[poolID]
	if !ok {
		return nil
	}

	out := *snap
	out.Samples = append([]domain.PoolSample(nil), snap.Samples...)
	return &out
}

// PoolCount returns the number of tracked pools.
func (a *Analyzer) PoolCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.snapshots)
}
