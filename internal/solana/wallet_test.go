package solana

import (
	"context"
	"errors"
	"testing"
)

// fakeRPC implements RPCClient with canned balances.
type fakeRPC struct {
	RPCClient
	lamports uint64
	err      error
}

func (f *fakeRPC) GetBalance(_ context.Context, _ string) (uint64, error) {
	return f.lamports, f.err
}

// onCurveAddr is the system program key; it decodes to a valid curve point.
const onCurveAddr = "11111111111111111111111111111111"

func TestWalletProvider_BalanceSOL(t *testing.T) {
	provider, err := NewWalletProvider(&fakeRPC{lamports: 1_500_000_000}, onCurveAddr)
	if err != nil {
		t.Fatalf("NewWalletProvider: %v", err)
	}

	balance, err := provider.BalanceSOL()
	if err != nil {
		t.Fatalf("BalanceSOL: %v", err)
	}
	if balance != 1.5 {
		t.Errorf("expected 1.5 SOL, got %f", balance)
	}
}

func TestWalletProvider_Error(t *testing.T) {
	provider, err := NewWalletProvider(&fakeRPC{err: errors.New("rpc down")}, onCurveAddr)
	if err != nil {
		t.Fatalf("NewWalletProvider: %v", err)
	}

	if _, err := provider.BalanceSOL(); err == nil {
		t.Error("expected error from failing RPC")
	}
}

func TestWalletProvider_InvalidAddress(t *testing.T) {
	if _, err := NewWalletProvider(&fakeRPC{}, "garbage"); err == nil {
		t.Error("expected error for malformed address")
	}
}
