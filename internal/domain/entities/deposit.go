package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// DepositStatus is the deposit confirmation state machine:
// pending -> confirming -> confirmed. confirmed is terminal.
type DepositStatus string

const (
	DepositPending    DepositStatus = "pending"
	DepositConfirming DepositStatus = "confirming"
	DepositConfirmed  DepositStatus = "confirmed"
)

// DepositMetadata holds the per-transfer context that doesn't belong in a
// dedicated column.
type DepositMetadata struct {
	From            string      `json:"from"`
	ContractAddress null.String `json:"contractAddress,omitempty"`
	BlockHash       string      `json:"blockHash"`
}

// Deposit is the mutable record tracking one matched on-chain transfer
// through to credit. (TxHash, WalletID, TokenID) uniquely identifies a
// deposit, enforced by a unique index at the storage layer.
type Deposit struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	WalletID       uuid.UUID
	TokenID        uuid.UUID
	TxHash         string
	Amount         string // arbitrary-precision decimal string
	Blockchain     ChainKey
	Network        Network
	NetworkVersion NetworkVersion
	BlockNumber    *int64
	Status         DepositStatus
	Confirmations  int64
	Metadata       DepositMetadata
	CreditedAt     *time.Time // set once the Ledger Applier has credited the balance
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (d Deposit) Credited() bool {
	return d.CreditedAt != nil
}

// DepositKey is the natural key a deposit is deduplicated on.
type DepositKey struct {
	TxHash   string
	WalletID uuid.UUID
	TokenID  uuid.UUID
}

func (d Deposit) IdempotencyKey() DepositKey {
	return DepositKey{TxHash: d.TxHash, WalletID: d.WalletID, TokenID: d.TokenID}
}

// NextStatus computes the status transition for a given confirmation count
// against the chain's required confirmation threshold. Confirmations only
// ever increase, and a deposit that has reached confirmed never regresses.
// pending only advances to confirming once it has at least one confirmation;
// the block that creates a deposit leaves it at pending with confirmations=0.
func NextStatus(current DepositStatus, confirmations int64, required int64) DepositStatus {
	if current == DepositConfirmed {
		return DepositConfirmed
	}
	if confirmations >= required {
		return DepositConfirmed
	}
	if confirmations <= 0 {
		return current
	}
	return DepositConfirming
}
