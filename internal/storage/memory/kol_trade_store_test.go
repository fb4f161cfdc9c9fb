package memory

import (
	"context"
	"errors"
	"testing"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

func TestKOLTradeStore_InsertAndGet(t *testing.T) {
	store := NewKOLTradeStore()
	ctx := context.Background()

	trade := &domain.KOLTrade{
		Wallet:      "wallet1",
		TokenMint:   "mint1",
		TokenSymbol: "TKN",
		Amount:      1000,
		PriceUSD:    1.5,
		IsBuy:       true,
		TxSignature: "sig1",
		Timestamp:   1704067200,
	}

	err := store.Insert(ctx, trade)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByWallet(ctx, "wallet1")
	if err != nil {
		t.Fatalf("GetByWallet failed: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("Expected 1 trade, got %d", len(result))
	}

	if result[0].ValueUSD() != 1500 {
		t.Errorf("ValueUSD mismatch: got %f, want %f", result[0].ValueUSD(), 1500.0)
	}
}

func TestKOLTradeStore_DuplicateKey(t *testing.T) {
	store := NewKOLTradeStore()
	ctx := context.Background()

	trade := &domain.KOLTrade{Wallet: "wallet1", TxSignature: "sig1", Timestamp: 1000}

	if err := store.Insert(ctx, trade); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, trade)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestKOLTradeStore_InvalidInput(t *testing.T) {
	store := NewKOLTradeStore()
	ctx := context.Background()

	cases := []*domain.KOLTrade{
		nil,
		{TxSignature: "sig1"},
		{Wallet: "wallet1"},
	}

	for _, trade := range cases {
		if err := store.Insert(ctx, trade); !errors.Is(err, storage.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for %+v, got %v", trade, err)
		}
	}
}

func TestKOLTradeStore_GetByToken(t *testing.T) {
	store := NewKOLTradeStore()
	ctx := context.Background()

	trades := []*domain.KOLTrade{
		{Wallet: "w1", TokenMint: "mint1", TxSignature: "s1", Timestamp: 2000},
		{Wallet: "w2", TokenMint: "mint1", TxSignature: "s2", Timestamp: 1000},
		{Wallet: "w1", TokenMint: "mint2", TxSignature: "s3", Timestamp: 1500},
	}

	for _, trade := range trades {
		if err := store.Insert(ctx, trade); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetByToken(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByToken failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 trades, got %d", len(result))
	}

	// Ordered by timestamp ASC
	if result[0].Timestamp != 1000 || result[1].Timestamp != 2000 {
		t.Errorf("Expected order [1000 2000], got [%d %d]", result[0].Timestamp, result[1].Timestamp)
	}
}

func TestKOLTradeStore_SameSignatureDifferentWallets(t *testing.T) {
	store := NewKOLTradeStore()
	ctx := context.Background()

	// Two wallets in the same transaction are distinct records
	a := &domain.KOLTrade{Wallet: "w1", TxSignature: "shared", Timestamp: 1000}
	b := &domain.KOLTrade{Wallet: "w2", TxSignature: "shared", Timestamp: 1000}

	if err := store.Insert(ctx, a); err != nil {
		t.Fatalf("Insert a failed: %v", err)
	}
	if err := store.Insert(ctx, b); err != nil {
		t.Fatalf("Insert b failed: %v", err)
	}
}
