package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// TokenRepository exposes read-only access to the externally-owned token
// registry.
type TokenRepository interface {
	// FindBy resolves the single active Token matching a query. Returns
	// errors.ErrNotFound when no token matches.
	FindBy(ctx context.Context, query entities.TokenQuery) (*entities.Token, error)

	// FindByID loads a single token by primary key, for the Ledger Applier
	// to resolve the balance symbol of a deposit being credited.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Token, error)

	// ListByBlockchain returns every active token minted on a chain. The
	// wallet filter does not use it; it resolves each transfer with FindBy.
	ListByBlockchain(ctx context.Context, chain entities.ChainKey) ([]entities.Token, error)
}
