package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mr-tron/base58"
)

// tronAddressPrefix is Tron's mainnet address version byte (0x41), prepended
// to the 20-byte EVM-style address before base58check-encoding.
const tronAddressPrefix = byte(0x41)

// HexToTronBase58 converts a Tron hex address (with or without the "41"
// prefix byte, with or without a leading "0x") to its base58check form.
func HexToTronBase58(hexAddr string) (string, error) {
	hexAddr = strings.TrimPrefix(hexAddr, "0x")
	raw, err := hex.DecodeString(hexAddr)
	if err != nil {
		return "", err
	}
	if len(raw) == 20 {
		raw = append([]byte{tronAddressPrefix}, raw...)
	}
	return base58CheckEncode(raw), nil
}

func base58CheckEncode(payload []byte) string {
	checksum := doubleSHA256(payload)[:4]
	return base58.Encode(append(payload, checksum...))
}

func doubleSHA256(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:]
}
