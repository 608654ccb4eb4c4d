package entities

import (
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// NetworkVersion identifies the token standard a Token record was minted
// under.
type NetworkVersion string

const (
	NetworkVersionNative NetworkVersion = "NATIVE"
	NetworkVersionERC20  NetworkVersion = "ERC20"
	NetworkVersionBEP20  NetworkVersion = "BEP20"
	NetworkVersionTRC20  NetworkVersion = "TRC20"
)

// Token is an immutable record owned by the external token registry. Only
// IsActive tokens may produce deposits.
type Token struct {
	ID              uuid.UUID
	Symbol          string
	BaseSymbol      null.String // defaults to Symbol when unset; see BalanceSymbol
	Blockchain      ChainKey
	ContractAddress string // empty for NATIVE tokens
	NetworkVersion  NetworkVersion
	Decimals        int
	IsActive        bool
	Metadata        map[string]any
}

// BalanceSymbol is the symbol under which the wallet balance row is kept:
// token.BaseSymbol when set, else token.Symbol.
func (t Token) BalanceSymbol() string {
	if t.BaseSymbol.Valid && t.BaseSymbol.String != "" {
		return t.BaseSymbol.String
	}
	return t.Symbol
}

// TokenQuery selects the single Token matching every non-zero field. It is
// the Storage Gateway's findTokenBy predicate made concrete.
type TokenQuery struct {
	Blockchain      ChainKey
	NetworkVersion  NetworkVersion
	ContractAddress string // matched case-insensitively by the repository
	Symbol          string
	ActiveOnly      bool
}
