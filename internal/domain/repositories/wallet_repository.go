package repositories

import (
	"context"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// WalletRepository exposes read-only access to the externally-owned wallet
// registry. The core never creates, updates, or deletes a wallet.
type WalletRepository interface {
	// ListByTarget returns every wallet registered for a chain/network, for
	// building the address -> wallet lookup map a monitor filters blocks
	// against.
	ListByTarget(ctx context.Context, target entities.Target) ([]entities.Wallet, error)
}
