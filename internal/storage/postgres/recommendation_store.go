package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// RecommendationStore implements storage.RecommendationStore using PostgreSQL.
type RecommendationStore struct {
	pool *Pool
}

// NewRecommendationStore creates a new RecommendationStore.
func NewRecommendationStore(pool *Pool) *RecommendationStore {
	return &RecommendationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RecommendationStore = (*RecommendationStore)(nil)

// Insert adds a new recommendation. Returns ErrDuplicateKey if (pool_id, created_at) exists.
func (s *RecommendationStore) Insert(ctx context.Context, r *domain.TradeRecommendation) error {
	if r == nil || r.PoolID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO recommendations (
			pool_id, token_symbol, decision, recommendation, confidence,
			trading_amount_sol, expected_return, risk_level, reasoning, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.pool.Exec(ctx, query,
		r.PoolID,
		r.TokenSymbol,
		r.Decision,
		r.Recommendation,
		r.Confidence,
		r.TradingAmountSOL,
		r.ExpectedReturn,
		r.RiskLevel,
		r.Reasoning,
		r.CreatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

// GetByPool retrieves all recommendations for a pool, ordered by creation time ASC.
func (s *RecommendationStore) GetByPool(ctx context.Context, poolID string) ([]*domain.TradeRecommendation, error) {
	query := `
		SELECT pool_id, token_symbol, decision, recommendation, confidence,
		       trading_amount_sol, expected_return, risk_level, reasoning, created_at
		FROM recommendations
		WHERE pool_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("get recommendations by pool: %w", err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

// GetRecent retrieves the most recent recommendations, newest first, capped at limit.
func (s *RecommendationStore) GetRecent(ctx context.Context, limit int) ([]*domain.TradeRecommendation, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT pool_id, token_symbol, decision, recommendation, confidence,
		       trading_amount_sol, expected_return, risk_level, reasoning, created_at
		FROM recommendations
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent recommendations: %w", err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

// scanRecommendations scans multiple rows into a slice of TradeRecommendation.
func scanRecommendations(rows pgx.Rows) ([]*domain.TradeRecommendation, error) {
	var recommendations []*domain.TradeRecommendation

	for rows.Next() {
		var r domain.TradeRecommendation

		err := rows.Scan(
			&r.PoolID,
			&r.TokenSymbol,
			&r.Decision,
			&r.Recommendation,
			&r.Confidence,
			&r.TradingAmountSOL,
			&r.ExpectedReturn,
			&r.RiskLevel,
			&r.Reasoning,
			&r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation row: %w", err)
		}

		recommendations = append(recommendations, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendation rows: %w", err)
	}

	return recommendations, nil
}
