package clickhouse

import (
	"context"
	"fmt"

	"solana-flow-bot/internal/domain"
	"solana-flow-bot/internal/storage"
)

// SampleArchive implements storage.SampleArchive using ClickHouse.
// Inserts go through batches; the ReplacingMergeTree engine collapses
// replayed (pool_id, timestamp_ms) rows at merge time, so Archive does
// not enforce uniqueness up front.
type SampleArchive struct {
	conn *Conn
}

// NewSampleArchive creates a new SampleArchive.
func NewSampleArchive(conn *Conn) *SampleArchive {
	return &SampleArchive{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleArchive = (*SampleArchive)(nil)

// Archive appends a batch of samples for a pool.
func (s *SampleArchive) Archive(ctx context.Context, poolID string, samples []domain.PoolSample) error {
	if poolID == "" {
		return storage.ErrInvalidInput
	}
	if len(samples) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pool_samples (pool_id, timestamp_ms, liquidity)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sample := range samples {
		if err := batch.Append(poolID, sample.TimestampMs, sample.Liquidity); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByPool retrieves all archived samples for a pool, ordered by timestamp ASC.
func (s *SampleArchive) GetByPool(ctx context.Context, poolID string) ([]domain.PoolSample, error) {
	query := `
		SELECT timestamp_ms, liquidity
		FROM pool_samples FINAL
		WHERE pool_id = ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("query samples by pool: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// GetByTimeRange retrieves samples for a pool within [start, end] (inclusive).
func (s *SampleArchive) GetByTimeRange(ctx context.Context, poolID string, start, end int64) ([]domain.PoolSample, error) {
	query := `
		SELECT timestamp_ms, liquidity
		FROM pool_samples FINAL
		WHERE pool_id = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, poolID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query samples by time range: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSamples scans multiple rows into a slice of PoolSample.
func scanSamples(rows chRows) ([]domain.PoolSample, error) {
	var samples []domain.PoolSample

	for rows.Next() {
		var sample domain.PoolSample

		if err := rows.Scan(&sample.TimestampMs, &sample.Liquidity); err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}

	return samples, nil
}
