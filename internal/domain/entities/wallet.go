package entities

import (
	"strings"

	"github.com/google/uuid"
)

// Wallet is an immutable record owned by the external wallet registry. The
// core only reads wallets; it never creates or mutates them.
type Wallet struct {
	ID      uuid.UUID
	UserID  uuid.UUID
	Address string
	Chain   ChainKey
	Network Network
}

// MatchKey returns the canonical form of the wallet's address for the
// purpose of building an address -> wallet lookup map. Matching is
// case-insensitive (lowercased) for EVM chains, and exact-string for every
// other chain family.
func (w Wallet) MatchKey() string {
	return CanonicalAddress(w.Chain, w.Address)
}

// CanonicalAddress normalizes an address to the chain's canonical matching
// form: lowercase hex for EVM chains, exact string otherwise (Tron base58,
// Bitcoin scriptPubKey-derived, XRP classic address).
func CanonicalAddress(chain ChainKey, address string) string {
	switch chain.Family() {
	case FamilyEVM:
		return strings.ToLower(address)
	default:
		return address
	}
}
