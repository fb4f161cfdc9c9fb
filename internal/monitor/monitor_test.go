package monitor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"solana-flow-bot/internal/decision"
	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/feed/stub"
	"solana-flow-bot/internal/flow"
	"solana-flow-bot/internal/jito"
	"solana-flow-bot/internal/notify"
	"solana-flow-bot/internal/scoring"
	"solana-flow-bot/internal/solana"
	"solana-flow-bot/internal/storage/memory"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// rampPool builds the pool state at a given elapsed second. Liquidity grows
// quadratically, so the short-window flow rate outpaces the medium window
// and the pool classifies as accelerating accumulation.
func rampPool(creation int64, elapsed float64) domain.PoolRecord {
	growth := elapsed * elapsed
	return domain.PoolRecord{
		ID:           "ramp-pool",
		BaseToken:    domain.TokenInfo{Mint: "base-mint", Symbol: "TKN"},
		QuoteToken:   domain.TokenInfo{Mint: domain.MintSOL, Symbol: "SOL"},
		BaseAmount:   25000 + growth/2,
		QuoteAmount:  30000 + growth/2,
		Status:       domain.PoolStatusOnline,
		CreationTime: creation,
	}
}

// newTestMonitor wires a monitor over scripted feed steps with all fakes.
func newTestMonitor(t *testing.T, clk *fakeClock, steps [][]domain.PoolRecord, opts ...Option) (*Monitor, *stub.Source, *notify.Recorder) {
	t.Helper()

	source := stub.NewSource(steps...)
	analyzer := flow.NewAnalyzer(flow.DefaultConfig(), flow.WithClock(clk.Now))
	risk := scoring.NewRiskAnalyzer(scoring.DefaultRiskConfig()).WithClock(clk.Now)
	engine := decision.NewEngine(decision.DefaultConfig(), nil).WithClock(clk.Now)
	recorder := notify.NewRecorder()

	opts = append([]Option{WithClock(clk.Now)}, opts...)
	m := New(source, analyzer, risk, engine, recorder, opts...)
	return m, source, recorder
}

func TestMonitor_TickDetectsAndRecommends(t *testing.T) {
	clk := newFakeClock()
	creation := clk.Now().Unix()

	// The medium flow window needs 60s of observation before it reads
	// non-zero, so run enough ticks to cover it.
	const tickSeconds = 5
	const tickCount = 15
	var steps [][]domain.PoolRecord
	for i := 0; i < tickCount; i++ {
		elapsed := float64((i + 1) * tickSeconds)
		steps = append(steps, []domain.PoolRecord{rampPool(creation, elapsed)})
	}

	oppStore := memory.NewOpportunityStore()
	recStore := memory.NewRecommendationStore()
	archive := memory.NewSampleArchive()
	bundler := jito.NewFake()
	tips := jito.NewTipCalculator(jito.DefaultTipConfig())

	m, _, recorder := newTestMonitor(t, clk, steps,
		WithStores(Stores{Opportunities: oppStore, Recommendations: recStore, Samples: archive}),
		WithExecutor(bundler, tips),
	)

	ctx := context.Background()
	for i := 0; i < tickCount; i++ {
		clk.Advance(tickSeconds * time.Second)
		if err := m.Tick(ctx); err != nil {
			t.Fatalf("Tick %d failed: %v", i, err)
		}
	}

	opps := recorder.Opportunities
	if len(opps) == 0 {
		t.Fatal("Expected at least one opportunity alert")
	}
	first := opps[0]
	if first.Pattern.Pattern != domain.PatternAccelerating && first.Pattern.Pattern != domain.PatternStrongAccumulation {
		t.Errorf("Unexpected alert pattern %s", first.Pattern.Pattern)
	}
	if first.RiskScore == nil {
		t.Error("Expected risk score on opportunity")
	}

	recs := recorder.Recommendations
	if len(recs) == 0 {
		t.Fatal("Expected at least one recommendation")
	}
	if recs[0].Decision != domain.DecisionYes {
		t.Errorf("Recommendation decision = %s, want YES (reasoning: %v)", recs[0].Decision, recs[0].Reasoning)
	}

	// Persistence sinks observed the same results.
	stored, err := oppStore.GetByPool(ctx, "ramp-pool")
	if err != nil || len(stored) == 0 {
		t.Errorf("Expected stored opportunities, got %d (err %v)", len(stored), err)
	}
	storedRecs, err := recStore.GetByPool(ctx, "ramp-pool")
	if err != nil || len(storedRecs) == 0 {
		t.Errorf("Expected stored recommendations, got %d (err %v)", len(storedRecs), err)
	}
	samples, err := archive.GetByPool(ctx, "ramp-pool")
	if err != nil || len(samples) != tickCount {
		t.Errorf("Expected %d archived samples, got %d (err %v)", tickCount, len(samples), err)
	}

	// YES recommendation reached the execution placeholder.
	if bundler.Count() == 0 {
		t.Error("Expected a submitted bundle")
	}
}

func TestMonitor_AlertCooldown(t *testing.T) {
	clk := newFakeClock()
	creation := clk.Now().Unix()

	const tickSeconds = 5
	var steps [][]domain.PoolRecord
	for i := 0; i < 20; i++ {
		elapsed := float64((i + 1) * tickSeconds)
		steps = append(steps, []domain.PoolRecord{rampPool(creation, elapsed)})
	}

	m, _, recorder := newTestMonitor(t, clk, steps)

	ctx := context.Background()
	for i := 0; i < 20; i++ {
		clk.Advance(tickSeconds * time.Second)
		if err := m.Tick(ctx); err != nil {
			t.Fatalf("Tick %d failed: %v", i, err)
		}
	}

	// The pool starts qualifying once the medium window is covered, and
	// every later tick lands inside the 5 minute cooldown: exactly one alert.
	if got := len(recorder.Opportunities); got != 1 {
		t.Errorf("Expected 1 opportunity within cooldown, got %d", got)
	}
}

func TestMonitor_FetchErrorReported(t *testing.T) {
	clk := newFakeClock()
	m, source, recorder := newTestMonitor(t, clk, nil)
	source.Err = errors.New("aggregator down")

	err := m.Tick(context.Background())
	if err == nil {
		t.Fatal("Expected tick error on feed failure")
	}
	if len(recorder.Opportunities) != 0 {
		t.Error("No alerts expected on feed failure")
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	clk := newFakeClock()
	m, _, _ := newTestMonitor(t, clk, nil, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

type countingCache struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCache) Invalidate() {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
}

func (c *countingCache) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestMonitor_HandlePoolEventsInvalidatesCache(t *testing.T) {
	clk := newFakeClock()
	cache := &countingCache{}
	m, _, _ := newTestMonitor(t, clk, nil, WithCache(cache))

	events := make(chan solana.PoolEvent, 2)
	events <- solana.PoolEvent{PoolID: "new-pool", TxSignature: "sig"}
	close(events)

	m.HandlePoolEvents(context.Background(), events)

	if cache.Calls() != 1 {
		t.Errorf("Expected 1 cache invalidation, got %d", cache.Calls())
	}
}
