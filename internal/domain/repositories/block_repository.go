package repositories

import (
	"context"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// BlockRepository defines the interface for block persistence
type BlockRepository interface {
	// Upsert inserts a block; a block at an existing height is a no-op
	// (first write wins)
	Upsert(ctx context.Context, block *entities.Block) error

	// List returns blocks ordered by height descending
	List(ctx context.Context, limit, offset int) ([]entities.Block, error)

	// Count returns the total number of indexed blocks
	Count(ctx context.Context) (int64, error)

	// GetByHeight returns a single block, or nil when not indexed
	GetByHeight(ctx context.Context, height int64) (*entities.Block, error)

	// MaxHeight returns the highest indexed height, 0 when empty
	MaxHeight(ctx context.Context) (int64, error)
}
