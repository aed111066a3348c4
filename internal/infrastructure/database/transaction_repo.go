package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chainscan/explorer/internal/domain/entities"
	"github.com/chainscan/explorer/internal/domain/repositories"
)

// Ensure TransactionRepo implements TransactionRepository
var _ repositories.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implements TransactionRepository using PostgreSQL
type TransactionRepo struct {
	db *sqlx.DB
}

// NewTransactionRepo creates a new transaction repository
func NewTransactionRepo(db *sqlx.DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// BatchInsert inserts transactions in a single database transaction.
// Already-known hashes are skipped so a re-ingested block does not duplicate rows.
func (r *TransactionRepo) BatchInsert(ctx context.Context, txs []entities.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO transactions (hash, height, timestamp, fee, gas, memo,
								  success, type, amount, from_address, to_address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (hash) DO NOTHING
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range txs {
		_, err := stmt.ExecContext(ctx,
			t.Hash,
			t.Height,
			t.Timestamp,
			t.Fee,
			t.Gas,
			t.Memo,
			t.Success,
			t.Type,
			t.Amount,
			t.FromAddress,
			t.ToAddress,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", t.Hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List returns transactions ordered by height descending
func (r *TransactionRepo) List(ctx context.Context, limit, offset int) ([]entities.Transaction, error) {
	query := `
		SELECT hash, height, timestamp, fee::TEXT AS fee, gas, memo,
			   success, type, amount::TEXT AS amount, from_address, to_address, created_at
		FROM transactions
		ORDER BY height DESC, hash
		LIMIT $1 OFFSET $2
	`

	txs := make([]entities.Transaction, 0, limit)
	if err := r.db.SelectContext(ctx, &txs, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return txs, nil
}

// Count returns the total number of indexed transactions
func (r *TransactionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions`); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}
