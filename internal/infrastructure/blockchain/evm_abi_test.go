package blockchain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestDecodeTransferLog_Valid(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	contract := common.HexToAddress("0x3333333333333333333333333333333333333333")
	value := big.NewInt(1_000_000)

	data, err := erc20ABI.Events["Transfer"].Inputs.NonIndexed().Pack(value)
	require.NoError(t, err)

	log := types.Log{
		Address: contract,
		Topics: []common.Hash{
			transferEventSig,
			common.BytesToHash(from.Bytes()),
			common.BytesToHash(to.Bytes()),
		},
		Data: data,
	}

	decoded, ok := DecodeTransferLog(log)
	require.True(t, ok)
	require.Equal(t, contract.Hex(), decoded.ContractAddress)
	require.Equal(t, from.Hex(), decoded.From)
	require.Equal(t, to.Hex(), decoded.To)
	require.Equal(t, value.String(), decoded.Value.String())
}

func TestDecodeTransferLog_WrongSignature(t *testing.T) {
	log := types.Log{
		Topics: []common.Hash{common.HexToHash("0xdead"), common.Hash{}, common.Hash{}},
	}
	_, ok := DecodeTransferLog(log)
	require.False(t, ok)
}

func TestDecodeDecimalsResult(t *testing.T) {
	packed, err := erc20ABI.Pack("decimals")
	require.NoError(t, err)
	require.Equal(t, hexutil.Encode(DecimalsCallData()), hexutil.Encode(packed))

	returned, err := erc20ABI.Methods["decimals"].Outputs.Pack(uint8(18))
	require.NoError(t, err)

	decimals, err := DecodeDecimalsResult(returned)
	require.NoError(t, err)
	require.Equal(t, uint8(18), decimals)
}
