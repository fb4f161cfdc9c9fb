package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

func TestOpportunityStore_InsertAndGetByPool(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOpportunityStore(pool)

	opp := &domain.PoolOpportunity{
		PoolID:      "opp-test-pool-1",
		BaseSymbol:  "TKN",
		QuoteSymbol: "SOL",
		Pattern: domain.PatternResult{
			Pattern:    domain.PatternStrongAccumulation,
			Rate:       12.5,
			AgeSeconds: 300,
		},
		Liquidity:  50000,
		Score:      82.5,
		RiskScore:  ptr(15.0),
		Warnings:   []string{"low holder count", "fresh pool"},
		DetectedAt: 1700000001000,
	}

	// Insert
	err := store.Insert(ctx, opp)
	require.NoError(t, err)

	// GetByPool
	opportunities, err := store.GetByPool(ctx, opp.PoolID)
	require.NoError(t, err)

	require.Len(t, opportunities, 1)
	got := opportunities[0]
	assert.Equal(t, opp.PoolID, got.PoolID)
	assert.Equal(t, opp.BaseSymbol, got.BaseSymbol)
	assert.Equal(t, opp.QuoteSymbol, got.QuoteSymbol)
	assert.Equal(t, opp.Pattern.Pattern, got.Pattern.Pattern)
	assert.InDelta(t, opp.Pattern.Rate, got.Pattern.Rate, 0.0001)
	assert.InDelta(t, opp.Pattern.AgeSeconds, got.Pattern.AgeSeconds, 0.0001)
	assert.InDelta(t, opp.Liquidity, got.Liquidity, 0.0001)
	assert.InDelta(t, opp.Score, got.Score, 0.0001)
	require.NotNil(t, got.RiskScore)
	assert.InDelta(t, 15.0, *got.RiskScore, 0.0001)
	assert.Equal(t, opp.Warnings, got.Warnings)
	assert.Equal(t, opp.DetectedAt, got.DetectedAt)
}

func TestOpportunityStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOpportunityStore(pool)

	opp := &domain.PoolOpportunity{
		PoolID:     "opp-dup-pool",
		Pattern:    domain.PatternResult{Pattern: domain.PatternAccelerating},
		DetectedAt: 1700000001000,
	}

	require.NoError(t, store.Insert(ctx, opp))

	err := store.Insert(ctx, opp)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestOpportunityStore_NullRiskScore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOpportunityStore(pool)

	opp := &domain.PoolOpportunity{
		PoolID:     "opp-null-risk",
		Pattern:    domain.PatternResult{Pattern: domain.PatternNeutral},
		DetectedAt: 1700000001000,
	}

	require.NoError(t, store.Insert(ctx, opp))

	opportunities, err := store.GetByPool(ctx, opp.PoolID)
	require.NoError(t, err)
	require.Len(t, opportunities, 1)
	assert.Nil(t, opportunities[0].RiskScore)
	assert.Zero(t, opportunities[0].Risk())
}

func TestOpportunityStore_GetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewOpportunityStore(pool)

	for i, ts := range []int64{1000, 3000, 2000} {
		opp := &domain.PoolOpportunity{
			PoolID:     "opp-recent-pool",
			Pattern:    domain.PatternResult{Pattern: domain.PatternAccelerating},
			Score:      float64(i),
			DetectedAt: ts,
		}
		require.NoError(t, store.Insert(ctx, opp))
	}

	opportunities, err := store.GetRecent(ctx, 2)
	require.NoError(t, err)

	require.Len(t, opportunities, 2)
	assert.Equal(t, int64(3000), opportunities[0].DetectedAt)
	assert.Equal(t, int64(2000), opportunities[1].DetectedAt)
}
