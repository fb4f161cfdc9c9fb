package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// KOLTradeStore implements storage.KOLTradeStore using PostgreSQL.
type KOLTradeStore struct {
	pool *Pool
}

// NewKOLTradeStore creates a new KOLTradeStore.
func NewKOLTradeStore(pool *Pool) *KOLTradeStore {
	return &KOLTradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.KOLTradeStore = (*KOLTradeStore)(nil)

// Insert adds a new trade. Returns ErrDuplicateKey if (wallet, tx_signature) exists.
func (s *KOLTradeStore) Insert(ctx context.Context, t *domain.KOLTrade) error {
	if t == nil || t.Wallet == "" || t.TxSignature == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO kol_trades (
			wallet, token_mint, token_symbol, amount, price_usd, is_buy, tx_signature, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		t.Wallet,
		t.TokenMint,
		t.TokenSymbol,
		t.Amount,
		t.PriceUSD,
		t.IsBuy,
		t.TxSignature,
		t.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert kol trade: %w", err)
	}
	return nil
}

// GetByWallet retrieves all trades for a wallet, ordered by timestamp ASC.
func (s *KOLTradeStore) GetByWallet(ctx context.Context, wallet string) ([]*domain.KOLTrade, error) {
	query := `
		SELECT wallet, token_mint, token_symbol, amount, price_usd, is_buy, tx_signature, timestamp
		FROM kol_trades
		WHERE wallet = $1
		ORDER BY timestamp ASC, tx_signature ASC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("get kol trades by wallet: %w", err)
	}
	defer rows.Close()

	return scanKOLTrades(rows)
}

// GetByToken retrieves all trades for a token mint, ordered by timestamp ASC.
func (s *KOLTradeStore) GetByToken(ctx context.Context, mint string) ([]*domain.KOLTrade, error) {
	query := `
		SELECT wallet, token_mint, token_symbol, amount, price_usd, is_buy, tx_signature, timestamp
		FROM kol_trades
		WHERE token_mint = $1
		ORDER BY timestamp ASC, tx_signature ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get kol trades by token: %w", err)
	}
	defer rows.Close()

	return scanKOLTrades(rows)
}

// scanKOLTrades scans multiple rows into a slice of KOLTrade.
func scanKOLTrades(rows pgx.Rows) ([]*domain.KOLTrade, error) {
	var trades []*domain.KOLTrade

	for rows.Next() {
		var t domain.KOLTrade

		err := rows.Scan(
			&t.Wallet,
			&t.TokenMint,
			&t.TokenSymbol,
			&t.Amount,
			&t.PriceUSD,
			&t.IsBuy,
			&t.TxSignature,
			&t.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan kol trade row: %w", err)
		}

		trades = append(trades, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kol trade rows: %w", err)
	}

	return trades, nil
}
