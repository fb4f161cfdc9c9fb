package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// OpportunityStore implements storage.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *Pool
}

// NewOpportunityStore creates a new OpportunityStore.
func NewOpportunityStore(pool *Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

// Compile-time interface check.
var _ storage.OpportunityStore = (*OpportunityStore)(nil)

// Insert adds a new opportunity. Returns ErrDuplicateKey if (pool_id, detected_at) exists.
func (s *OpportunityStore) Insert(ctx context.Context, o *domain.PoolOpportunity) error {
	if o == nil || o.PoolID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO opportunities (
			pool_id, base_symbol, quote_symbol, pattern, flow_rate, age_seconds,
			liquidity, score, risk_score, warnings, detected_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		o.PoolID,
		o.BaseSymbol,
		o.QuoteSymbol,
		string(o.Pattern.Pattern),
		o.Pattern.Rate,
		o.Pattern.AgeSeconds,
		o.Liquidity,
		o.Score,
		o.RiskScore,
		o.Warnings,
		o.DetectedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert opportunity: %w", err)
	}
	return nil
}

// GetByPool retrieves all opportunities for a pool, ordered by detection time ASC.
func (s *OpportunityStore) GetByPool(ctx context.Context, poolID string) ([]*domain.PoolOpportunity, error) {
	query := `
		SELECT pool_id, base_symbol, quote_symbol, pattern, flow_rate, age_seconds,
		       liquidity, score, risk_score, warnings, detected_at
		FROM opportunities
		WHERE pool_id = $1
		ORDER BY detected_at ASC
	`

	rows, err := s.pool.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("get opportunities by pool: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// GetRecent retrieves the most recent opportunities, newest first, capped at limit.
func (s *OpportunityStore) GetRecent(ctx context.Context, limit int) ([]*domain.PoolOpportunity, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT pool_id, base_symbol, quote_symbol, pattern, flow_rate, age_seconds,
		       liquidity, score, risk_score, warnings, detected_at
		FROM opportunities
		ORDER BY detected_at DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent opportunities: %w", err)
	}
	defer rows.Close()

	return scanOpportunities(rows)
}

// scanOpportunities scans multiple rows into a slice of PoolOpportunity.
func scanOpportunities(rows pgx.Rows) ([]*domain.PoolOpportunity, error) {
	var opportunities []*domain.PoolOpportunity

	for rows.Next() {
		var (
			o       domain.PoolOpportunity
			pattern string
		)

		err := rows.Scan(
			&o.PoolID,
			&o.BaseSymbol,
			&o.QuoteSymbol,
			&pattern,
			&o.Pattern.Rate,
			&o.Pattern.AgeSeconds,
			&o.Liquidity,
			&o.Score,
			&o.RiskScore,
			&o.Warnings,
			&o.DetectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan opportunity row: %w", err)
		}

		o.Pattern.Pattern = domain.FlowPattern(pattern)
		opportunities = append(opportunities, &o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate opportunity rows: %w", err)
	}

	return opportunities, nil
}
