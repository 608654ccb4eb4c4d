package blockchain

import (
	"context"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// ChainAdapter is the capability set every chain family implements: read the
// tip height, fetch one normalized block, and (where the chain supports it)
// push new heads as they arrive.
type ChainAdapter interface {
	// TipHeight returns the chain's current head height.
	TipHeight(ctx context.Context) (uint64, error)

	// FetchBlock returns the normalized block at height, with every
	// transaction decoded into the NormalizedTx union.
	FetchBlock(ctx context.Context, height uint64) (*entities.Block, error)

	// SupportsPush reports whether Subscribe is implemented. EVM chains do;
	// Bitcoin, Tron, and XRP are pull-only in this implementation.
	SupportsPush() bool

	// Subscribe starts a push-mode feed of new block heights. The returned
	// channel is closed when ctx is cancelled or the subscription fails
	// irrecoverably; callers must drain it to avoid leaking the underlying
	// subscription.
	Subscribe(ctx context.Context) (<-chan uint64, error)

	// Close releases any underlying connection.
	Close()
}
