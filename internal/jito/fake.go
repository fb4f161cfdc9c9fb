package jito

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solana-flow-bot/internal/domain"
)

// Fake is a deterministic in-memory Bundler for tests and dry runs.
// Bundle IDs are sequential; every submitted bundle lands.
type Fake struct {
	mu      sync.Mutex
	nextID  int
	bundles map[string][]string
	tips    map[string]int64
}

var _ Bundler = (*Fake)(nil)

// NewFake creates an empty fake bundler.
func NewFake() *Fake {
	return &Fake{
		bundles: make(map[string][]string),
		tips:    make(map[string]int64),
	}
}

// SubmitBundle records the bundle and returns a deterministic receipt.
func (f *Fake) SubmitBundle(_ context.Context, txs []string, tipLamports int64) (*domain.BundleReceipt, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("empty bundle")
	}

	f.mu.Lock()
	f.nextID++
	id := fmt.Sprintf("bundle-%04d", f.nextID)
	f.bundles[id] = txs
	f.tips[id] = tipLamports
	f.mu.Unlock()

	return &domain.BundleReceipt{
		BundleID:    id,
		Status:      domain.BundleStatusPending,
		TipLamports: tipLamports,
		SubmittedAt: time.Now().UnixMilli(),
	}, nil
}

// BundleStatus reports landed for every known bundle.
func (f *Fake) BundleStatus(_ context.Context, bundleID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.bundles[bundleID]; !ok {
		return domain.BundleStatusUnknown, nil
	}
	return domain.BundleStatusLanded, nil
}

// TipAccounts returns a fixed single account.
func (f *Fake) TipAccounts(_ context.Context) ([]string, error) {
	return []string{"FakeTip11111111111111111111111111111111111"}, nil
}

// Tip returns the tip recorded for a bundle ID, zero if unknown.
func (f *Fake) Tip(bundleID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tips[bundleID]
}

// Submitted returns the transactions recorded under a bundle ID.
func (f *Fake) Submitted(bundleID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bundles[bundleID]
}

// Count returns the number of submitted bundles.
func (f *Fake) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.bundles)
}
