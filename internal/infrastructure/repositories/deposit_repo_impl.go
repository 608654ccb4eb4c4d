package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/models"
)

// DepositRepository persists the confirmation state machine.
type DepositRepository struct {
	db *gorm.DB
}

func NewDepositRepository(db *gorm.DB) *DepositRepository {
	return &DepositRepository{db: db}
}

func (r *DepositRepository) Insert(ctx context.Context, deposit *entities.Deposit) error {
	if deposit.ID == uuid.Nil {
		deposit.ID = uuid.New()
	}

	m, err := models.FromDepositEntity(deposit)
	if err != nil {
		return err
	}

	db := GetDB(ctx, r.db)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tx_hash"}, {Name: "wallet_id"}, {Name: "token_id"}},
			DoNothing: true,
		}).
		Create(m).Error
}

func (r *DepositRepository) FindByKey(ctx context.Context, key entities.DepositKey) (*entities.Deposit, error) {
	db := GetDB(ctx, r.db)
	var m models.Deposit
	err := db.WithContext(ctx).
		Where("tx_hash = ? AND wallet_id = ? AND token_id = ?", key.TxHash, key.WalletID, key.TokenID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}

func (r *DepositRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Deposit, error) {
	db := GetDB(ctx, r.db)
	var m models.Deposit
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}

func (r *DepositRepository) FindPending(ctx context.Context, target entities.Target) ([]entities.Deposit, error) {
	db := GetDB(ctx, r.db)
	var ms []models.Deposit
	err := db.WithContext(ctx).
		Where("blockchain = ? AND network = ? AND status != ?",
			string(target.Chain), string(target.Network), string(entities.DepositConfirmed)).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	deposits := make([]entities.Deposit, 0, len(ms))
	for _, m := range ms {
		deposits = append(deposits, m.ToEntity())
	}
	return deposits, nil
}

func (r *DepositRepository) UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int64, status entities.DepositStatus) error {
	db := GetDB(ctx, r.db)
	result := db.WithContext(ctx).Model(&models.Deposit{}).
		Where("id = ? AND status != ?", id, string(entities.DepositConfirmed)).
		Updates(map[string]any{
			"confirmations": confirmations,
			"status":        string(status),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the deposit doesn't exist, or it's already confirmed and
		// this update is a stale re-check — both are a no-op, not an error.
		return nil
	}
	return nil
}

func (r *DepositRepository) Confirm(ctx context.Context, id uuid.UUID, confirmations int64) (bool, error) {
	db := GetDB(ctx, r.db)
	now := time.Now()
	result := db.WithContext(ctx).Model(&models.Deposit{}).
		Where("id = ? AND status != ?", id, string(entities.DepositConfirmed)).
		Updates(map[string]any{
			"status":        string(entities.DepositConfirmed),
			"confirmations": confirmations,
			"credited_at":   now,
			"updated_at":    now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
