package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chainscan/explorer/internal/domain/entities"
	"github.com/chainscan/explorer/internal/domain/repositories"
)

// Ensure BlockRepo implements BlockRepository
var _ repositories.BlockRepository = (*BlockRepo)(nil)

// BlockRepo implements BlockRepository using PostgreSQL
type BlockRepo struct {
	db *sqlx.DB
}

// NewBlockRepo creates a new block repository
func NewBlockRepo(db *sqlx.DB) *BlockRepo {
	return &BlockRepo{db: db}
}

// Upsert inserts a block. Re-ingesting an existing height is a no-op, which
// keeps the indexing path idempotent.
func (r *BlockRepo) Upsert(ctx context.Context, block *entities.Block) error {
	query := `
		INSERT INTO blocks (height, hash, time, proposer_address, num_txs, total_gas)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (height) DO NOTHING
	`

	_, err := r.db.ExecContext(ctx, query,
		block.Height,
		block.Hash,
		block.Time,
		block.ProposerAddress,
		block.NumTxs,
		block.TotalGas,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert block %d: %w", block.Height, err)
	}

	return nil
}

// List returns blocks ordered by height descending
func (r *BlockRepo) List(ctx context.Context, limit, offset int) ([]entities.Block, error) {
	query := `
		SELECT height, hash, time, proposer_address, num_txs, total_gas, created_at
		FROM blocks
		ORDER BY height DESC
		LIMIT $1 OFFSET $2
	`

	blocks := make([]entities.Block, 0, limit)
	if err := r.db.SelectContext(ctx, &blocks, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	return blocks, nil
}

// Count returns the total number of indexed blocks
func (r *BlockRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM blocks`); err != nil {
		return 0, fmt.Errorf("failed to count blocks: %w", err)
	}
	return count, nil
}

// GetByHeight returns a single block, or nil when not indexed
func (r *BlockRepo) GetByHeight(ctx context.Context, height int64) (*entities.Block, error) {
	var block entities.Block
	query := `
		SELECT height, hash, time, proposer_address, num_txs, total_gas, created_at
		FROM blocks WHERE height = $1
	`

	if err := r.db.GetContext(ctx, &block, query, height); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get block %d: %w", height, err)
	}

	return &block, nil
}

// MaxHeight returns the highest indexed height, 0 when the table is empty
func (r *BlockRepo) MaxHeight(ctx context.Context) (int64, error) {
	var height int64
	if err := r.db.GetContext(ctx, &height, `SELECT COALESCE(MAX(height), 0) FROM blocks`); err != nil {
		return 0, fmt.Errorf("failed to get max height: %w", err)
	}
	return height, nil
}
