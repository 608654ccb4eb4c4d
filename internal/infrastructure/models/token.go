package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// Token mirrors the external token registry row this repository only
// ever reads.
type Token struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Symbol          string    `gorm:"type:varchar(20);not null"`
	BaseSymbol      string    `gorm:"type:varchar(20)"`
	Blockchain      string    `gorm:"type:varchar(10);not null;index"`
	ContractAddress string    `gorm:"type:varchar(255);index"`
	NetworkVersion  string    `gorm:"type:varchar(10);not null"`
	Decimals        int       `gorm:"not null"`
	IsActive        bool      `gorm:"default:true"`
	Metadata        string    `gorm:"type:jsonb;default:'{}'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Token) TableName() string { return "tokens" }

func (m Token) ToEntity() entities.Token {
	var meta map[string]any
	if m.Metadata != "" {
		_ = json.Unmarshal([]byte(m.Metadata), &meta)
	}
	return entities.Token{
		ID:              m.ID,
		Symbol:          m.Symbol,
		BaseSymbol:      null.NewString(m.BaseSymbol, m.BaseSymbol != ""),
		Blockchain:      entities.ChainKey(m.Blockchain),
		ContractAddress: m.ContractAddress,
		NetworkVersion:  entities.NetworkVersion(m.NetworkVersion),
		Decimals:        m.Decimals,
		IsActive:        m.IsActive,
		Metadata:        meta,
	}
}
