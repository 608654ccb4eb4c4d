package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// DepositRepository persists deposit state-machine records.
type DepositRepository interface {
	// Insert is idempotent on the deposit's natural key: inserting a
	// duplicate is a no-op that returns nil instead of erroring. The passed
	// deposit is not updated with the existing row's fields.
	Insert(ctx context.Context, deposit *entities.Deposit) error

	FindByKey(ctx context.Context, key entities.DepositKey) (*entities.Deposit, error)

	// FindByID loads a single deposit by primary key, for the Ledger
	// Applier to re-read (and, via UnitOfWork.WithLock, lock) before crediting.
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Deposit, error)

	// FindPending returns every deposit not yet in the confirmed state, for
	// the confirmation updater to re-check on each tick.
	FindPending(ctx context.Context, target entities.Target) ([]entities.Deposit, error)

	// UpdateConfirmations advances a not-yet-confirmed deposit's
	// confirmation count. Implementations must reject (no-op) attempts to
	// move a confirmed deposit back out of that state; the confirmed
	// transition itself only ever happens through Confirm.
	UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int64, status entities.DepositStatus) error

	// Confirm is the single compare-and-set that flips a deposit into the
	// confirmed state and stamps CreditedAt, gated on the row not already
	// being confirmed. It is the only writer of DepositConfirmed, so its
	// RowsAffected is what the Ledger Applier branches on to decide
	// whether the balance credit in the same transaction actually runs.
	// Returns false, nil if the deposit was already confirmed.
	Confirm(ctx context.Context, id uuid.UUID, confirmations int64) (bool, error)
}
