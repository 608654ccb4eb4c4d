// Package confirmation advances each pending deposit's confirmation count
// against the current chain height and triggers the ledger applier on the
// first transition into confirmed.
package confirmation

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/internal/observability"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/logger"
)

// RequiredConfirmations resolves the confirmation threshold for a target,
// backed by internal/config's per-chain, per-network CONFIRMATION_TABLE.
type RequiredConfirmations func(target entities.Target) int64

// LedgerApplier atomically confirms a deposit and credits its balance
// exactly once.
type LedgerApplier interface {
	Credit(ctx context.Context, depositID uuid.UUID, confirmations int64) error
}

// Updater runs after each block a monitor processes for its chain.
type Updater struct {
	deposits repositories.DepositRepository
	applier  LedgerApplier
	required RequiredConfirmations

	// Metrics is optional; a nil value disables recording.
	Metrics *observability.Metrics
}

func New(deposits repositories.DepositRepository, applier LedgerApplier, required RequiredConfirmations) *Updater {
	return &Updater{deposits: deposits, applier: applier, required: required}
}

// Update re-checks every not-yet-confirmed deposit on target against
// currentHeight. A deposit's confirmations never decreases here other than
// flooring at zero; status never regresses out of confirmed.
func (u *Updater) Update(ctx context.Context, target entities.Target, currentHeight uint64) error {
	pending, err := u.deposits.FindPending(ctx, target)
	if err != nil {
		return err
	}

	required := u.required(target)

	for _, deposit := range pending {
		if deposit.BlockNumber == nil {
			continue
		}

		confirmations := int64(currentHeight) - *deposit.BlockNumber
		if confirmations < 0 {
			// A re-org deep enough to move the tip behind this deposit's
			// recorded block is not detected or rolled back here; confirmations
			// simply floors at zero until the chain height catches back up.
			// TODO: hook re-org-aware rollback in here once block hashes are
			// tracked per height, to distinguish a genuine re-org from a slow tip read.
			confirmations = 0
		}

		newStatus := entities.NextStatus(deposit.Status, confirmations, required)

		if newStatus == entities.DepositConfirmed {
			if deposit.Status == entities.DepositConfirmed {
				continue
			}

			// The confirmed transition and the balance credit are one
			// transaction inside Credit, gated by its own compare-and-set
			// on status. UpdateConfirmations never runs for this deposit:
			// if Credit fails, the row is untouched and stays pending here
			// on FindPending next tick instead of being stranded confirmed
			// but uncredited.
			if err := u.applier.Credit(ctx, deposit.ID, confirmations); err != nil {
				logger.Error(ctx, "confirmation updater: credit failed, deposit left pending for retry",
					zap.String("chain", target.Chain.String()),
					zap.String("network", target.Network.String()),
					zap.String("txHash", deposit.TxHash),
					zap.String("message", err.Error()),
				)
				continue
			}
			if u.Metrics != nil {
				u.Metrics.DepositsConfirmed.WithLabelValues(target.Chain.String(), target.Network.String()).Inc()
			}
			continue
		}

		if err := u.deposits.UpdateConfirmations(ctx, deposit.ID, confirmations, newStatus); err != nil {
			logger.Error(ctx, "confirmation updater: update failed",
				zap.String("chain", target.Chain.String()),
				zap.String("network", target.Network.String()),
				zap.String("txHash", deposit.TxHash),
				zap.String("message", err.Error()),
			)
		}
	}

	return nil
}
