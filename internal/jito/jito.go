// Package jito submits MEV-protected transaction bundles to a Jito block
// engine and computes competitive tips.
package jito

import (
	"context"

	"solana-flow-bot/internal/domain"
)

// Bundler submits transaction bundles. HTTPClient talks to a real block
// engine; Fake is a deterministic in-memory implementation for tests and
// dry runs.
type Bundler interface {
	// SubmitBundle submits base58-encoded signed transactions as one atomic
	// bundle and returns the receipt with the engine-assigned bundle ID.
	SubmitBundle(ctx context.Context, txs []string, tipLamports int64) (*domain.BundleReceipt, error)

	// BundleStatus returns the current status of a submitted bundle.
	BundleStatus(ctx context.Context, bundleID string) (string, error)

	// TipAccounts returns the block engine's tip accounts.
	TipAccounts(ctx context.Context) ([]string, error)
}
