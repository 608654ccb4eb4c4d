package blockchain

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

const (
	tronContractTransfer      = "TransferContract"
	tronContractTransferAsset = "TransferAssetContract"
)

// TronAdapter implements ChainAdapter for Tron. Pull-only, polling
// getCurrentBlock/getBlockByNum. A 403 response switches the retry policy
// used for that single call to the taller rate-limit backoff.
type TronAdapter struct {
	client      *TronClient
	retry       RetryPolicy
	rateLimited RetryPolicy
}

func NewTronAdapter(client *TronClient) *TronAdapter {
	return &TronAdapter{
		client:      client,
		retry:       DefaultRetryPolicy(),
		rateLimited: TronRateLimitRetryPolicy(),
	}
}

func (a *TronAdapter) doWithRateLimitAwareRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	var rateLimitErr *ErrTronRateLimited
	firstErr := fn(ctx)
	if firstErr == nil {
		return nil
	}
	if errors.As(firstErr, &rateLimitErr) {
		return a.rateLimited.Do(ctx, fn)
	}
	return a.retry.Do(ctx, fn)
}

func (a *TronAdapter) TipHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := a.doWithRateLimitAwareRetry(ctx, func(ctx context.Context) error {
		block, err := a.client.GetCurrentBlock(ctx)
		if err != nil {
			return err
		}
		height = block.Height()
		return nil
	})
	return height, err
}

func (a *TronAdapter) FetchBlock(ctx context.Context, height uint64) (*entities.Block, error) {
	var block *TronBlock
	err := a.doWithRateLimitAwareRetry(ctx, func(ctx context.Context) error {
		b, err := a.client.GetBlockByNum(ctx, height)
		if err != nil {
			return err
		}
		block = b
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch tron block %d: %w", height, err)
	}
	return normalizeTronBlock(block)
}

func normalizeTronBlock(block *TronBlock) (*entities.Block, error) {
	txs := make([]entities.Tx, 0, len(block.Transactions))
	for _, tx := range block.Transactions {
		if len(tx.RawData.Contract) == 0 {
			continue
		}
		contract := tx.RawData.Contract[0]

		switch contract.Type {
		case tronContractTransfer:
			from, err := HexToTronBase58(contract.Parameter.Value.OwnerAddress)
			if err != nil {
				continue
			}
			to, err := HexToTronBase58(contract.Parameter.Value.ToAddress)
			if err != nil {
				continue
			}
			txs = append(txs, entities.Tx{
				Kind: entities.TxNativeTransfer,
				Hash: tx.TxID,
				NativeTransfer: &entities.NativeTransfer{
					From:      from,
					To:        to,
					AmountRaw: strconv.FormatInt(contract.Parameter.Value.Amount, 10),
					Decimals:  6,
				},
			})

		case tronContractTransferAsset:
			from, err := HexToTronBase58(contract.Parameter.Value.OwnerAddress)
			if err != nil {
				continue
			}
			to, err := HexToTronBase58(contract.Parameter.Value.ToAddress)
			if err != nil {
				continue
			}
			// TransferAssetContract identifies a TRC-10 asset by name, not
			// contract address — the node never populates contract_address
			// for this contract type, so the token is resolved by symbol.
			symbol, err := tronAssetSymbol(contract.Parameter.Value.AssetName)
			if err != nil {
				continue
			}
			txs = append(txs, entities.Tx{
				Kind: entities.TxTokenTransfer,
				Hash: tx.TxID,
				TokenTransfer: &entities.TokenTransfer{
					From:      from,
					To:        to,
					Symbol:    symbol,
					AmountRaw: strconv.FormatInt(contract.Parameter.Value.Amount, 10),
					Standard:  entities.NetworkVersionTRC20,
				},
			})
		}
	}

	return &entities.Block{
		Height: block.Height(),
		Hash:   block.BlockID,
		Txs:    txs,
	}, nil
}

// tronAssetSymbol decodes a TransferAssetContract's hex-encoded asset_name
// into the plain-text symbol Tron registered it under (e.g. "USDT").
func tronAssetSymbol(assetNameHex string) (string, error) {
	raw, err := hex.DecodeString(assetNameHex)
	if err != nil {
		return "", fmt.Errorf("decode tron asset_name %q: %w", assetNameHex, err)
	}
	return string(raw), nil
}

func (a *TronAdapter) SupportsPush() bool { return false }

func (a *TronAdapter) Subscribe(ctx context.Context) (<-chan uint64, error) {
	return nil, fmt.Errorf("tron adapter: push mode not supported")
}

func (a *TronAdapter) Close() {}
