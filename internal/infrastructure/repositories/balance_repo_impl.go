package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/models"
)

// BalanceRepository credits the externally-owned wallet balance table.
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

func (r *BalanceRepository) Credit(ctx context.Context, userID uuid.UUID, symbol string, amount decimal.Decimal) error {
	db := GetDB(ctx, r.db)

	// Credit always runs inside the UnitOfWork transaction the Ledger
	// Applier opens. The deposit lock taken there only serializes credits
	// of the same deposit, so the balance row is read FOR UPDATE: credits
	// of different deposits to the same user/symbol wait on it instead of
	// overwriting each other's read-modify-write.
	//
	// A missing row is not self-healed: it means the wallet registry never
	// provisioned a spot balance row for this user/symbol, which is an
	// operator-facing data integrity failure, not a first-deposit case.
	var row models.WalletBalance
	err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND base_symbol = ? AND type = ?", userID, symbol, "spot").
		First(&row).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainerrors.ErrBalanceRowMissing
	case err != nil:
		return err
	}

	current, err := decimal.NewFromString(row.Balance)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Model(&row).
		Updates(map[string]any{
			"balance":    current.Add(amount).String(),
			"updated_at": time.Now(),
		}).Error
}
