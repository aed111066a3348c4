package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/chainscan/explorer/internal/domain/entities"
	"github.com/chainscan/explorer/internal/domain/repositories"
)

// Ensure ValidatorRepo implements ValidatorRepository
var _ repositories.ValidatorRepository = (*ValidatorRepo)(nil)

// ValidatorRepo implements ValidatorRepository using PostgreSQL
type ValidatorRepo struct {
	db *sqlx.DB
}

// NewValidatorRepo creates a new validator repository
func NewValidatorRepo(db *sqlx.DB) *ValidatorRepo {
	return &ValidatorRepo{db: db}
}

// UpsertAll replaces the stored state of the given validators in one
// database transaction and deactivates validators absent from the set.
func (r *ValidatorRepo) UpsertAll(ctx context.Context, validators []entities.Validator) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO validators (address, moniker, voting_power, commission, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (address) DO UPDATE SET
			moniker = EXCLUDED.moniker,
			voting_power = EXCLUDED.voting_power,
			commission = EXCLUDED.commission,
			active = EXCLUDED.active,
			updated_at = NOW()
	`

	addresses := make([]string, 0, len(validators))
	for _, v := range validators {
		if _, err := tx.ExecContext(ctx, query,
			v.Address, v.Moniker, v.VotingPower, v.Commission, v.Active,
		); err != nil {
			return fmt.Errorf("failed to upsert validator %s: %w", v.Address, err)
		}
		addresses = append(addresses, v.Address)
	}

	// Validators that dropped out of the refreshed set toggle inactive.
	deactivate := `UPDATE validators SET active = FALSE, updated_at = NOW() WHERE NOT (address = ANY($1))`
	if _, err := tx.ExecContext(ctx, deactivate, pq.Array(addresses)); err != nil {
		return fmt.Errorf("failed to deactivate stale validators: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// List returns validators ordered by voting power descending
func (r *ValidatorRepo) List(ctx context.Context, activeOnly bool) ([]entities.Validator, error) {
	query := `
		SELECT address, moniker, voting_power, commission, active, updated_at
		FROM validators
	`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY voting_power DESC, address`

	var validators []entities.Validator
	if err := r.db.SelectContext(ctx, &validators, query); err != nil {
		return nil, fmt.Errorf("failed to list validators: %w", err)
	}

	return validators, nil
}

// Count returns the number of validators
func (r *ValidatorRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM validators`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count validators: %w", err)
	}
	return count, nil
}
