package repositories

import (
	"context"

	"github.com/chainscan/explorer/internal/domain/entities"
)

// ValidatorRepository defines the interface for the current-state validator table
type ValidatorRepository interface {
	// UpsertAll replaces the stored state of the given validators and marks
	// any validator not in the set as inactive
	UpsertAll(ctx context.Context, validators []entities.Validator) error

	// List returns validators ordered by voting power descending
	List(ctx context.Context, activeOnly bool) ([]entities.Validator, error)

	// Count returns the number of validators
	Count(ctx context.Context, activeOnly bool) (int64, error)
}
