package repositories

import (
	"context"
)

// WatermarkRepository tracks the highest block height fully persisted. The
// watermark is read before each indexing pass and advanced only after a
// height has been persisted, so a crash re-attempts at most the in-flight
// height, which the unique-height constraint makes harmless.
type WatermarkRepository interface {
	// Get returns the current watermark, 0 when the store is empty
	Get(ctx context.Context) (int64, error)

	// Set advances the watermark
	Set(ctx context.Context, height int64) error
}
