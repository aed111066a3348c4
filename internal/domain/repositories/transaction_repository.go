package repositories

import (
	"context"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// TransactionRepository defines the interface for transaction persistence
type TransactionRepository interface {
	// BatchInsert inserts transactions in a single database transaction;
	// already-known hashes are skipped
	BatchInsert(ctx context.Context, txs []entities.Transaction) error

	// List returns transactions ordered by height descending
	List(ctx context.Context, limit, offset int) ([]entities.Transaction, error)

	// Count returns the total number of indexed transactions
	Count(ctx context.Context) (int64, error)
}
