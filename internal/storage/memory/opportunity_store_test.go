package memory

import (
	"context"
	"errors"
	"testing"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

func TestOpportunityStore_InsertAndGet(t *testing.T) {
	store := NewOpportunityStore()
	ctx := context.Background()

	risk := 15.0
	opp := &domain.PoolOpportunity{
		PoolID:      "pool1",
		BaseSymbol:  "TKN",
		QuoteSymbol: "SOL",
		Pattern: domain.PatternResult{
			Pattern: domain.PatternStrongAccumulation,
			Rate:    12.5,
		},
		Liquidity:  50000,
		Score:      82.5,
		RiskScore:  &risk,
		Warnings:   []string{"low holder count"},
		DetectedAt: 1704067200000,
	}

	err := store.Insert(ctx, opp)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	result, err := store.GetByPool(ctx, "pool1")
	if err != nil {
		t.Fatalf("GetByPool failed: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("Expected 1 opportunity, got %d", len(result))
	}

	if result[0].Score != 82.5 {
		t.Errorf("Score mismatch: got %f, want %f", result[0].Score, 82.5)
	}
	if result[0].Risk() != 15.0 {
		t.Errorf("Risk mismatch: got %f, want %f", result[0].Risk(), 15.0)
	}
}

func TestOpportunityStore_DuplicateKey(t *testing.T) {
	store := NewOpportunityStore()
	ctx := context.Background()

	opp := &domain.PoolOpportunity{PoolID: "pool1", DetectedAt: 1000}

	if err := store.Insert(ctx, opp); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, opp)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestOpportunityStore_InvalidInput(t *testing.T) {
	store := NewOpportunityStore()
	ctx := context.Background()

	err := store.Insert(ctx, &domain.PoolOpportunity{DetectedAt: 1000})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty pool ID, got %v", err)
	}
}

func TestOpportunityStore_CopiesOnRead(t *testing.T) {
	store := NewOpportunityStore()
	ctx := context.Background()

	risk := 10.0
	opp := &domain.PoolOpportunity{PoolID: "pool1", RiskScore: &risk, DetectedAt: 1000}
	if err := store.Insert(ctx, opp); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// Mutating a returned record must not affect stored data
	result, _ := store.GetByPool(ctx, "pool1")
	*result[0].RiskScore = 99.0
	result[0].Warnings = append(result[0].Warnings, "mutated")

	again, _ := store.GetByPool(ctx, "pool1")
	if again[0].Risk() != 10.0 {
		t.Errorf("Stored risk mutated: got %f, want %f", again[0].Risk(), 10.0)
	}
	if len(again[0].Warnings) != 0 {
		t.Errorf("Stored warnings mutated: got %d entries", len(again[0].Warnings))
	}
}

func TestOpportunityStore_GetRecent(t *testing.T) {
	store := NewOpportunityStore()
	ctx := context.Background()

	for _, ts := range []int64{1000, 3000, 2000, 4000} {
		opp := &domain.PoolOpportunity{PoolID: "pool1", DetectedAt: ts}
		if err := store.Insert(ctx, opp); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 opportunities, got %d", len(result))
	}
	if result[0].DetectedAt != 4000 || result[1].DetectedAt != 3000 {
		t.Errorf("Expected newest first [4000 3000], got [%d %d]", result[0].DetectedAt, result[1].DetectedAt)
	}
}

func TestOpportunityStore_GetRecentInvalidLimit(t *testing.T) {
	store := NewOpportunityStore()

	_, err := store.GetRecent(context.Background(), 0)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for limit 0, got %v", err)
	}
}

func TestOpportunityStore_OrderByDetectedAt(t *testing.T) {
	store := NewOpportunityStore()
	ctx := context.Background()

	for _, ts := range []int64{3000, 1000, 2000} {
		if err := store.Insert(ctx, &domain.PoolOpportunity{PoolID: "pool1", DetectedAt: ts}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	result, _ := store.GetByPool(ctx, "pool1")

	for i := 1; i < len(result); i++ {
		if result[i].DetectedAt < result[i-1].DetectedAt {
			t.Errorf("Results not ordered: %d < %d", result[i].DetectedAt, result[i-1].DetectedAt)
		}
	}
}
