package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// Wallet mirrors the external wallet registry row this repository only
// ever reads.
type Wallet struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Address   string    `gorm:"type:varchar(255);not null;index"`
	Chain     string    `gorm:"type:varchar(10);not null;index"`
	Network   string    `gorm:"type:varchar(10);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Wallet) TableName() string { return "wallets" }

func (m Wallet) ToEntity() entities.Wallet {
	return entities.Wallet{
		ID:      m.ID,
		UserID:  m.UserID,
		Address: m.Address,
		Chain:   entities.ChainKey(m.Chain),
		Network: entities.Network(m.Network),
	}
}
