package storage

import (
	"context"

	"solana-flow-bot/internal/domain"
)

// OpportunityStore provides access to detected opportunity storage.
type OpportunityStore interface {
	// Insert adds a new opportunity. Returns ErrDuplicateKey if (pool_id, detected_at) exists.
	Insert(ctx context.Context, o *domain.PoolOpportunity) error

	// GetByPool retrieves all opportunities for a pool, ordered by detection time ASC.
	GetByPool(ctx context.Context, poolID string) ([]*domain.PoolOpportunity, error)

	// GetRecent retrieves the most recent opportunities, newest first, capped at limit.
	GetRecent(ctx context.Context, limit int) ([]*domain.PoolOpportunity, error)
}

// RecommendationStore provides access to trade recommendation storage.
type RecommendationStore interface {
	// Insert adds a new recommendation. Returns ErrDuplicateKey if (pool_id, created_at) exists.
	Insert(ctx context.Context, r *domain.TradeRecommendation) error

	// GetByPool retrieves all recommendations for a pool, ordered by creation time ASC.
	GetByPool(ctx context.Context, poolID string) ([]*domain.TradeRecommendation, error)

	// GetRecent retrieves the most recent recommendations, newest first, capped at limit.
	GetRecent(ctx context.Context, limit int) ([]*domain.TradeRecommendation, error)
}

// KOLTradeStore provides access to tracked KOL trade storage.
type KOLTradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if (wallet, tx_signature) exists.
	Insert(ctx context.Context, t *domain.KOLTrade) error

	// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
	GetByWallet(ctx context.Context, wallet string) ([]*domain.KOLTrade, error)

	// GetByToken retrieves all trades for a token mint, ordered by timestamp ASC.
	GetByToken(ctx context.Context, mint string) ([]*domain.KOLTrade, error)
}

// SampleArchive provides append-only storage for liquidity sample history.
type SampleArchive interface {
	// Archive appends a batch of samples for a pool.
	Archive(ctx context.Context, poolID string, samples []domain.PoolSample) error

	// GetByPool retrieves all archived samples for a pool, ordered by timestamp ASC.
	GetByPool(ctx context.Context, poolID string) ([]domain.PoolSample, error)

	// GetByTimeRange retrieves samples for a pool within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, poolID string, start, end int64) ([]domain.PoolSample, error)
}
