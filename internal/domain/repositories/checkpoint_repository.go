package repositories

import (
	"context"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// CheckpointRepository persists the last block height each target has
// finished processing, in the shared system settings table.
type CheckpointRepository interface {
	Get(ctx context.Context, target entities.Target) (uint64, bool, error)

	// Set advances the checkpoint. Implementations must reject a height
	// lower than the one already stored.
	Set(ctx context.Context, target entities.Target, height uint64) error
}
