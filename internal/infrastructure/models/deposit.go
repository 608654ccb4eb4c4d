package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// Deposit is the mutable row tracking one matched transfer through to
// credit. The (tx_hash, wallet_id, token_id) unique index is what makes
// Insert idempotent under re-ingestion of the same block.
type Deposit struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index"`
	WalletID       uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenID        uuid.UUID `gorm:"type:uuid;not null;index"`
	TxHash         string    `gorm:"type:varchar(255);not null;uniqueIndex:deposits_tx_wallet_token_uq"`
	Amount         string    `gorm:"type:varchar(100);not null"`
	Blockchain     string    `gorm:"type:varchar(10);not null"`
	Network        string    `gorm:"type:varchar(10);not null"`
	NetworkVersion string    `gorm:"type:varchar(10);not null"`
	BlockNumber    *int64
	Status         string `gorm:"type:varchar(20);not null;index"`
	Confirmations  int64  `gorm:"not null;default:0"`
	Metadata       string `gorm:"type:jsonb;default:'{}'"`
	CreditedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (Deposit) TableName() string { return "deposits" }

func (m Deposit) ToEntity() entities.Deposit {
	var meta entities.DepositMetadata
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &meta)
	}
	return entities.Deposit{
		ID:             m.ID,
		UserID:         m.UserID,
		WalletID:       m.WalletID,
		TokenID:        m.TokenID,
		TxHash:         m.TxHash,
		Amount:         m.Amount,
		Blockchain:     entities.ChainKey(m.Blockchain),
		Network:        entities.Network(m.Network),
		NetworkVersion: entities.NetworkVersion(m.NetworkVersion),
		BlockNumber:    m.BlockNumber,
		Status:         entities.DepositStatus(m.Status),
		Confirmations:  m.Confirmations,
		Metadata:       meta,
		CreditedAt:     m.CreditedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func FromDepositEntity(d *entities.Deposit) (*Deposit, error) {
	meta, err := json.Marshal(d.Metadata)
	if err != nil {
		return nil, err
	}
	return &Deposit{
		ID:             d.ID,
		UserID:         d.UserID,
		WalletID:       d.WalletID,
		TokenID:        d.TokenID,
		TxHash:         d.TxHash,
		Amount:         d.Amount,
		Blockchain:     string(d.Blockchain),
		Network:        string(d.Network),
		NetworkVersion: string(d.NetworkVersion),
		BlockNumber:    d.BlockNumber,
		Status:         string(d.Status),
		Confirmations:  d.Confirmations,
		Metadata:       string(meta),
		CreditedAt:     d.CreditedAt,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}
