package flow

import (
	"fmt"
	"math"
	"testing"
	"time"

	"solana-flow-bot/internal/domain"
)

// testClock is a manually advanced clock for deterministic windows.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestAnalyzer(clock *testClock) *Analyzer {
	return NewAnalyzer(DefaultConfig(), WithClock(clock.Now))
}

func poolRecord(id string, liquidity float64, creation int64) *domain.PoolRecord {
	return &domain.PoolRecord{
		ID:           id,
		BaseToken:    domain.TokenInfo{Mint: "mint-" + id, Symbol: "TKN"},
		QuoteToken:   domain.TokenInfo{Mint: domain.MintSOL, Symbol: "SOL"},
		BaseAmount:   liquidity / 2,
		QuoteAmount:  liquidity / 2,
		Status:       domain.PoolStatusOnline,
		CreationTime: creation,
	}
}

func TestCalculateRate_FewerThanTwoSamples(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)

	if rate := a.CalculateRate("unknown", 60); rate != 0 {
		t.Errorf("Expected 0 for unknown pool, got %f", rate)
	}

	a.AddSample(poolRecord("p1", 1000, clock.Now().Unix()))
	if rate := a.CalculateRate("p1", 60); rate != 0 {
		t.Errorf("Expected 0 for single sample, got %f", rate)
	}
}

func TestCalculateRate_LinearGrowth(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// Liquidity growing by exactly 1.0 per second
	for i := 0; i < 10; i++ {
		a.AddSample(poolRecord("p1", 1000+float64(i), creation))
		clock.Advance(1 * time.Second)
	}

	rate := a.CalculateRate("p1", 10)
	if math.Abs(rate-1.0) > 1e-9 {
		t.Errorf("Expected rate 1.0/s, got %f", rate)
	}

	// A window wider than the observation history yields no rate yet.
	if rate := a.CalculateRate("p1", 60); rate != 0 {
		t.Errorf("Expected 0 for an uncovered window, got %f", rate)
	}
}

func TestCalculateRate_IdenticalTimestamps(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// Observe long enough to cover a 15s window, then land every sample in
	// that window at the same instant: degenerate regression denominator.
	a.AddSample(poolRecord("p1", 1000, creation))
	clock.Advance(60 * time.Second)
	a.AddSample(poolRecord("p1", 1100, creation))
	a.AddSample(poolRecord("p1", 1200, creation))
	a.AddSample(poolRecord("p1", 1300, creation))

	if rate := a.CalculateRate("p1", 15); rate != 0 {
		t.Errorf("Expected 0 for degenerate regression, got %f", rate)
	}
}

func TestCalculateRate_ConstantLiquidity(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// Identical, unchanging liquidity for >300s must give exactly rate=0
	for i := 0; i < 70; i++ {
		a.AddSample(poolRecord("p1", 5000, creation))
		clock.Advance(5 * time.Second)
	}

	if rate := a.CalculateRate("p1", 300); rate != 0 {
		t.Errorf("Expected 0 for constant liquidity, got %g", rate)
	}

	result := a.DetectAccumulation("p1")
	if result.Pattern != domain.PatternNeutral {
		t.Errorf("Expected NEUTRAL for constant liquidity, got %s", result.Pattern)
	}
}

func TestAddSample_PrunesOldSamples(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	for i := 0; i < 100; i++ {
		if i > 0 {
			clock.Advance(10 * time.Second)
		}
		a.AddSample(poolRecord("p1", 1000+float64(i), creation))
	}

	snap := a.Snapshot("p1")
	if snap == nil {
		t.Fatal("Expected snapshot for p1")
	}

	// Pruning ran at the last AddSample; the cutoff is relative to that
	// sample's timestamp, which the clock still reads.
	cutoff := clock.Now().UnixMilli() - int64(DefaultWindowSeconds)*1000
	for _, s := range snap.Samples {
		if s.TimestampMs < cutoff {
			t.Errorf("Sample at %d survived pruning (cutoff %d)", s.TimestampMs, cutoff)
		}
	}

	// 300s window at 10s sampling keeps at most ~31 samples
	if len(snap.Samples) > 32 {
		t.Errorf("Expected pruned window, got %d samples", len(snap.Samples))
	}
}

func TestDetectAccumulation_Total(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)

	valid := map[domain.FlowPattern]bool{
		domain.PatternStrongAccumulation: true,
		domain.PatternAccelerating:       true,
		domain.PatternSteady:             true,
		domain.PatternDecelerating:       true,
		domain.PatternDistribution:       true,
		domain.PatternNeutral:            true,
		domain.PatternTooOld:             true,
		domain.PatternUnknown:            true,
	}

	// Unknown pool
	if result := a.DetectAccumulation("missing"); result.Pattern != domain.PatternUnknown {
		t.Errorf("Expected UNKNOWN for missing pool, got %s", result.Pattern)
	}

	// Empty-ish snapshots with a single sample
	a.AddSample(poolRecord("p1", 0, clock.Now().Unix()))
	result := a.DetectAccumulation("p1")
	if !valid[result.Pattern] {
		t.Errorf("Expected a defined label, got %q", result.Pattern)
	}
}

func TestDetectAccumulation_TooOld(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)

	// Pool created 2701s ago exceeds the 2700s default max age
	creation := clock.Now().Unix() - 2701
	a.AddSample(poolRecord("p1", 1000, creation))
	a.AddSample(poolRecord("p1", 1100, creation))

	result := a.DetectAccumulation("p1")
	if result.Pattern != domain.PatternTooOld {
		t.Errorf("Expected TOO_OLD, got %s", result.Pattern)
	}
}

func TestDetectAccumulation_StrongAccumulation(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// Accelerating growth: rate in the short window exceeds the medium
	// window rate, which exceeds the long window rate, all positive.
	liquidity := 1000.0
	for i := 0; i < 300; i++ {
		growth := 1.0
		if i >= 240 {
			growth = 2.0 // last 60s
		}
		if i >= 285 {
			growth = 4.0 // last 15s
		}
		liquidity += growth
		a.AddSample(poolRecord("p1", liquidity, creation))
		clock.Advance(1 * time.Second)
	}

	result := a.DetectAccumulation("p1")
	if result.Pattern != domain.PatternStrongAccumulation {
		t.Errorf("Expected STRONG_ACCUMULATION, got %s (rate %f)", result.Pattern, result.Rate)
	}
	if result.Rate <= 0 {
		t.Errorf("Expected positive short rate, got %f", result.Rate)
	}
}

func TestDetectAccumulation_Distribution(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// Shrinking liquidity
	for i := 0; i < 60; i++ {
		a.AddSample(poolRecord("p1", 10000-float64(i)*10, creation))
		clock.Advance(1 * time.Second)
	}

	result := a.DetectAccumulation("p1")
	if result.Pattern != domain.PatternDistribution {
		t.Errorf("Expected DISTRIBUTION, got %s", result.Pattern)
	}
}

func TestDetectAccumulation_SingleWindowBoundary(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// Exactly two samples 15s apart: the short window is covered and rates
	// at 1.0/s, but the medium and long windows are not, so they stay 0 and
	// the classification falls through STEADY to NEUTRAL.
	a.AddSample(poolRecord("p1", 1000, creation))
	clock.Advance(15 * time.Second)
	a.AddSample(poolRecord("p1", 1015, creation))

	short := a.CalculateRate("p1", 15)
	if math.Abs(short-1.0) > 1e-9 {
		t.Errorf("Expected short rate 1.0/s, got %f", short)
	}
	if medium := a.CalculateRate("p1", 60); medium != 0 {
		t.Errorf("Expected medium rate 0 with 15s of history, got %f", medium)
	}
	if long := a.CalculateRate("p1", 300); long != 0 {
		t.Errorf("Expected long rate 0 with 15s of history, got %f", long)
	}

	result := a.DetectAccumulation("p1")
	if result.Pattern != domain.PatternNeutral {
		t.Errorf("Expected NEUTRAL at the medium-window boundary, got %s", result.Pattern)
	}
}

func TestDetectAccumulation_MediumZeroFallsToNeutral(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// A single observation has every rate at 0 and must classify NEUTRAL,
	// not STEADY.
	a.AddSample(poolRecord("p1", 1000, creation))
	result := a.DetectAccumulation("p1")
	if result.Pattern != domain.PatternNeutral {
		t.Errorf("Expected NEUTRAL when medium rate is 0, got %s", result.Pattern)
	}
}

func TestPrioritizedPools_Ordering(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	// dump: strictly negative short rate → DISTRIBUTION
	// flat: zero rates → NEUTRAL
	// grow: positive short and medium → STEADY (or better)
	for i := 0; i < 60; i++ {
		a.AddSample(poolRecord("dump", 10000-float64(i)*50, creation))
		a.AddSample(poolRecord("flat", 5000, creation))
		a.AddSample(poolRecord("grow", 1000+float64(i)*20, creation))
		clock.Advance(1 * time.Second)
	}

	ranked := a.PrioritizedPools()
	if len(ranked) != 3 {
		t.Fatalf("Expected 3 ranked pools, got %d", len(ranked))
	}

	// Pattern priority must dominate rate
	for i := 1; i < len(ranked); i++ {
		prev := ranked[i-1].Result.Pattern.Priority()
		cur := ranked[i].Result.Pattern.Priority()
		if cur > prev {
			t.Errorf("Pool %s (priority %d) ranked after %s (priority %d)",
				ranked[i].PoolID, cur, ranked[i-1].PoolID, prev)
		}
	}

	if ranked[len(ranked)-1].PoolID != "dump" {
		t.Errorf("Expected DISTRIBUTION pool last, got %s", ranked[len(ranked)-1].PoolID)
	}
}

func TestPrioritizedPools_ExcludesTooOldAndTiesByRate(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)

	// Ancient pool must be excluded
	a.AddSample(poolRecord("ancient", 1000, clock.Now().Unix()-10000))

	// Two growing pools with the same pattern but different rates
	creation := clock.Now().Unix()
	for i := 0; i < 60; i++ {
		a.AddSample(poolRecord("fast", 1000+float64(i)*100, creation))
		a.AddSample(poolRecord("slow", 1000+float64(i)*10, creation))
		clock.Advance(1 * time.Second)
	}

	ranked := a.PrioritizedPools()
	for _, r := range ranked {
		if r.PoolID == "ancient" {
			t.Error("TOO_OLD pool must not appear in prioritized pools")
		}
	}

	var fastIdx, slowIdx int
	for i, r := range ranked {
		switch r.PoolID {
		case "fast":
			fastIdx = i
		case "slow":
			slowIdx = i
		}
	}
	if fastIdx > slowIdx {
		t.Errorf("Expected fast pool (idx %d) before slow pool (idx %d)", fastIdx, slowIdx)
	}
}

func TestAnalyzer_ManyPools(t *testing.T) {
	clock := newTestClock()
	a := newTestAnalyzer(clock)
	creation := clock.Now().Unix()

	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("pool-%02d", i)
		a.AddSample(poolRecord(id, float64(1000+i), creation))
	}

	if got := a.PoolCount(); got != 50 {
		t.Errorf("Expected 50 tracked pools, got %d", got)
	}
}
