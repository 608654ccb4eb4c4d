package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/models"
)

// WalletRepository is a read-only view over the externally-owned wallet
// registry.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) ListByTarget(ctx context.Context, target entities.Target) ([]entities.Wallet, error) {
	var ms []models.Wallet
	if err := r.db.WithContext(ctx).
		Where("chain = ? AND network = ?", string(target.Chain), string(target.Network)).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	wallets := make([]entities.Wallet, 0, len(ms))
	for _, m := range ms {
		wallets = append(wallets, m.ToEntity())
	}
	return wallets, nil
}
