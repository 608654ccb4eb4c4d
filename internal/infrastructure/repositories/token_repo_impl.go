package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/models"
)

// TokenRepository is a read-only view over the externally-owned token
// registry.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) FindBy(ctx context.Context, query entities.TokenQuery) (*entities.Token, error) {
	q := r.db.WithContext(ctx).Model(&models.Token{})

	if query.Blockchain != "" {
		q = q.Where("blockchain = ?", string(query.Blockchain))
	}
	if query.NetworkVersion != "" {
		q = q.Where("network_version = ?", string(query.NetworkVersion))
	}
	if query.ContractAddress != "" {
		q = q.Where("LOWER(contract_address) = LOWER(?)", query.ContractAddress)
	}
	if query.Symbol != "" {
		q = q.Where("symbol = ?", query.Symbol)
	}
	if query.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}

	var m models.Token
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}

	e := m.ToEntity()
	return &e, nil
}

func (r *TokenRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Token, error) {
	var m models.Token
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}

func (r *TokenRepository) ListByBlockchain(ctx context.Context, chain entities.ChainKey) ([]entities.Token, error) {
	var ms []models.Token
	if err := r.db.WithContext(ctx).
		Where("blockchain = ? AND is_active = ?", strings.ToLower(string(chain)), true).
		Find(&ms).Error; err != nil {
		return nil, err
	}

	tokens := make([]entities.Token, 0, len(ms))
	for _, m := range ms {
		tokens = append(tokens, m.ToEntity())
	}
	return tokens, nil
}
