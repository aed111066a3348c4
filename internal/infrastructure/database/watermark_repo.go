package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/chainscan/explorer/internal/domain/repositories"
)

// Ensure WatermarkRepo implements WatermarkRepository
var _ repositories.WatermarkRepository = (*WatermarkRepo)(nil)

// WatermarkRepo implements WatermarkRepository over the single-row
// index_watermark table
type WatermarkRepo struct {
	db *sqlx.DB
}

// NewWatermarkRepo creates a new watermark repository
func NewWatermarkRepo(db *sqlx.DB) *WatermarkRepo {
	return &WatermarkRepo{db: db}
}

// Get returns the current watermark, 0 when the store is empty
func (r *WatermarkRepo) Get(ctx context.Context) (int64, error) {
	var height int64
	if err := r.db.GetContext(ctx, &height, `SELECT height FROM index_watermark WHERE id = 1`); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get watermark: %w", err)
	}
	return height, nil
}

// Set advances the watermark. GREATEST keeps the row monotonic even if a
// stale writer races a fresher one.
func (r *WatermarkRepo) Set(ctx context.Context, height int64) error {
	query := `
		INSERT INTO index_watermark (id, height)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET
			height = GREATEST(index_watermark.height, EXCLUDED.height),
			updated_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, height); err != nil {
		return fmt.Errorf("failed to set watermark: %w", err)
	}
	return nil
}
