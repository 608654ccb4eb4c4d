package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// EVMAdapter implements ChainAdapter for eth and bsc. Native transfers come
// straight off the block's transaction list; ERC-20/BEP-20 transfers are
// recovered from the block's Transfer logs rather than decoding every
// transaction's input data.
type EVMAdapter struct {
	chain  entities.ChainKey
	client *EVMClient
	retry  RetryPolicy
}

// NewEVMAdapter wraps an already-dialed EVMClient for one (chain, network).
func NewEVMAdapter(chain entities.ChainKey, client *EVMClient) *EVMAdapter {
	return &EVMAdapter{chain: chain, client: client, retry: DefaultRetryPolicy()}
}

func (a *EVMAdapter) TipHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		h, err := a.client.GetBlockNumber(ctx)
		if err != nil {
			return err
		}
		height = h
		return nil
	})
	return height, err
}

func (a *EVMAdapter) FetchBlock(ctx context.Context, height uint64) (*entities.Block, error) {
	var block *types.Block
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		b, err := a.client.GetBlockByNumber(ctx, height)
		if err != nil {
			return err
		}
		block = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch block %d: %w", height, err)
	}

	var logs []types.Log
	err = a.retry.Do(ctx, func(ctx context.Context) error {
		blockHash := block.Hash()
		l, err := a.client.FilterLogs(ctx, ethereum.FilterQuery{
			BlockHash: &blockHash,
		})
		if err != nil {
			return err
		}
		logs = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch logs for block %d: %w", height, err)
	}

	return a.normalize(block, logs), nil
}

func (a *EVMAdapter) normalize(block *types.Block, logs []types.Log) *entities.Block {
	txsByHash := make(map[string]*entities.Tx, len(block.Transactions()))

	for _, tx := range block.Transactions() {
		if tx.Value().Sign() == 0 {
			continue
		}
		signer := types.LatestSignerForChainID(tx.ChainId())
		from, err := types.Sender(signer, tx)
		if err != nil {
			continue
		}
		to := tx.To()
		if to == nil {
			continue
		}
		txsByHash[tx.Hash().Hex()] = &entities.Tx{
			Kind: entities.TxNativeTransfer,
			Hash: tx.Hash().Hex(),
			NativeTransfer: &entities.NativeTransfer{
				From:      from.Hex(),
				To:        to.Hex(),
				AmountRaw: tx.Value().String(),
				Decimals:  18,
			},
		}
	}

	for _, log := range logs {
		decoded, ok := DecodeTransferLog(log)
		if !ok {
			continue
		}
		hash := log.TxHash.Hex()
		txsByHash[hash] = &entities.Tx{
			Kind: entities.TxTokenTransfer,
			Hash: hash,
			TokenTransfer: &entities.TokenTransfer{
				From:            decoded.From,
				To:              decoded.To,
				ContractAddress: decoded.ContractAddress,
				AmountRaw:       decoded.Value.String(),
				Standard:        tokenStandardFor(a.chain),
			},
		}
	}

	txs := make([]entities.Tx, 0, len(txsByHash))
	for _, tx := range txsByHash {
		txs = append(txs, *tx)
	}

	return &entities.Block{
		Height: block.NumberU64(),
		Hash:   block.Hash().Hex(),
		Txs:    txs,
	}
}

func tokenStandardFor(chain entities.ChainKey) entities.NetworkVersion {
	if chain == entities.ChainBSC {
		return entities.NetworkVersionBEP20
	}
	return entities.NetworkVersionERC20
}

func (a *EVMAdapter) SupportsPush() bool { return true }

func (a *EVMAdapter) Subscribe(ctx context.Context) (<-chan uint64, error) {
	headers, sub, err := a.client.SubscribeNewHead(ctx)
	if err != nil {
		return nil, err
	}

	out := make(chan uint64)
	go func() {
		defer close(out)
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					return
				}
			case header, ok := <-headers:
				if !ok {
					return
				}
				select {
				case out <- header.Number.Uint64():
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (a *EVMAdapter) Close() {
	a.client.Close()
}
