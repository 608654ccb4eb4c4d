// Package ledger credits a confirmed deposit's balance exactly once.
package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
)

// Applier is the sole write path from a confirmed deposit to a user's spot
// balance.
type Applier struct {
	uow      repositories.UnitOfWork
	deposits repositories.DepositRepository
	tokens   repositories.TokenRepository
	balances repositories.BalanceRepository
}

func New(uow repositories.UnitOfWork, deposits repositories.DepositRepository, tokens repositories.TokenRepository, balances repositories.BalanceRepository) *Applier {
	return &Applier{uow: uow, deposits: deposits, tokens: tokens, balances: balances}
}

// Credit atomically flips a deposit into the confirmed state and applies
// its amount to its owner's spot balance. The status transition and the
// balance credit happen inside one transaction, gated by the same
// compare-and-set: Confirm only reports success for the caller that wins
// the race from not-confirmed to confirmed, so only that caller proceeds
// to credit the balance. A second call for an already-confirmed deposit
// sees Confirm report no change and returns without touching the balance.
func (a *Applier) Credit(ctx context.Context, depositID uuid.UUID, confirmations int64) error {
	return a.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := a.uow.WithLock(txCtx)

		deposit, err := a.deposits.FindByID(lockCtx, depositID)
		if err != nil {
			return fmt.Errorf("ledger applier: load deposit: %w", err)
		}

		confirmed, err := a.deposits.Confirm(txCtx, depositID, confirmations)
		if err != nil {
			return fmt.Errorf("ledger applier: confirm deposit: %w", err)
		}
		if !confirmed {
			return nil
		}

		token, err := a.tokens.FindByID(txCtx, deposit.TokenID)
		if err != nil {
			return fmt.Errorf("ledger applier: load token: %w", err)
		}

		amount, err := decimal.NewFromString(deposit.Amount)
		if err != nil {
			return fmt.Errorf("ledger applier: parse amount %q: %w", deposit.Amount, err)
		}

		if err := a.balances.Credit(txCtx, deposit.UserID, token.BalanceSymbol(), amount); err != nil {
			return fmt.Errorf("ledger applier: credit balance: %w", err)
		}

		return nil
	})
}
