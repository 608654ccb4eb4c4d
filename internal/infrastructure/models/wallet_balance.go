package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletBalance is the row the Ledger Applier credits once a deposit
// reaches confirmed. type is always "spot" for this tracker; the column
// exists because the balances table is shared with other balance types.
type WalletBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:wallet_balances_user_symbol_type_uq"`
	BaseSymbol string    `gorm:"type:varchar(20);not null;uniqueIndex:wallet_balances_user_symbol_type_uq"`
	Type       string    `gorm:"type:varchar(20);not null;default:'spot';uniqueIndex:wallet_balances_user_symbol_type_uq"`
	Balance    string    `gorm:"type:varchar(100);not null;default:'0'"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (WalletBalance) TableName() string { return "wallet_balances" }
