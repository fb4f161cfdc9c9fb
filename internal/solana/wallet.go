package solana

import (
	"context"
	"fmt"
	"time"
)

// DefaultBalanceTimeout bounds a single balance lookup.
const DefaultBalanceTimeout = 10 * time.Second

// WalletProvider reads a wallet's SOL balance over RPC. It satisfies the
// decision engine's balance gate.
type WalletProvider struct {
	client  RPCClient
	address string
	timeout time.Duration
}

// NewWalletProvider creates a provider for the given wallet address. The
// address must be a well-formed, on-curve public key.
func NewWalletProvider(client RPCClient, address string) (*WalletProvider, error) {
	if err := ValidateWalletAddress(address); err != nil {
		return nil, fmt.Errorf("wallet address: %w", err)
	}
	return &WalletProvider{
		client:  client,
		address: address,
		timeout: DefaultBalanceTimeout,
	}, nil
}

// Address returns the wallet's public key.
func (w *WalletProvider) Address() string {
	return w.address
}

// BalanceSOL returns the wallet balance in SOL.
func (w *WalletProvider) BalanceSOL() (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	lamports, err := w.client.GetBalance(ctx, w.address)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}

	return float64(lamports) / LamportsPerSOL, nil
}
