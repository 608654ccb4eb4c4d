package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceRepository credits the externally-owned wallet balance table. It is
// the only write path that touches user funds, and every call must run
// inside the UnitOfWork transaction that also marks the source deposit
// credited.
type BalanceRepository interface {
	// Credit adds amount to the balance row keyed by (userID, symbol).
	// Returns errors.ErrBalanceRowMissing if no row exists for the pair —
	// the wallet registry is responsible for provisioning balance rows,
	// not this call.
	Credit(ctx context.Context, userID uuid.UUID, symbol string, amount decimal.Decimal) error
}
