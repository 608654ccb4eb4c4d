package blockchain

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// erc20TransferABI is the minimal ERC-20 interface needed to decode
// Transfer events and call decimals()/balanceOf(address).
const erc20TransferABI = `[
	{"anonymous":false,"inputs":[{"indexed":true,"name":"from","type":"address"},{"indexed":true,"name":"to","type":"address"},{"indexed":false,"name":"value","type":"uint256"}],"name":"Transfer","type":"event"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"}
]`

var (
	erc20ABI, _      = abi.JSON(strings.NewReader(erc20TransferABI))
	transferEventSig = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))
)

// DecodedTransfer is an ERC-20/BEP-20 Transfer log, decoded from topics and
// data.
type DecodedTransfer struct {
	ContractAddress string
	From            string
	To              string
	Value           *big.Int
}

// DecodeTransferLog decodes a single Transfer(address,address,uint256) log.
// Returns ok=false for logs that don't match the Transfer topic signature or
// that don't carry exactly three topics; topic contents are not validated.
func DecodeTransferLog(log types.Log) (DecodedTransfer, bool) {
	if len(log.Topics) != 3 || log.Topics[0] != transferEventSig {
		return DecodedTransfer{}, false
	}

	value := new(big.Int)
	if values, err := erc20ABI.Events["Transfer"].Inputs.NonIndexed().Unpack(log.Data); err == nil && len(values) == 1 {
		if v, ok := values[0].(*big.Int); ok {
			value = v
		}
	} else {
		value.SetBytes(log.Data)
	}

	return DecodedTransfer{
		ContractAddress: log.Address.Hex(),
		From:            common.HexToAddress(log.Topics[1].Hex()).Hex(),
		To:              common.HexToAddress(log.Topics[2].Hex()).Hex(),
		Value:           value,
	}, true
}

// DecimalsCallData returns the ABI-encoded call data for decimals().
func DecimalsCallData() []byte {
	data, _ := erc20ABI.Pack("decimals")
	return data
}

// DecodeDecimalsResult unpacks the decimals() return value.
func DecodeDecimalsResult(result []byte) (uint8, error) {
	values, err := erc20ABI.Unpack("decimals", result)
	if err != nil || len(values) == 0 {
		return 0, err
	}
	d, _ := values[0].(uint8)
	return d, nil
}
