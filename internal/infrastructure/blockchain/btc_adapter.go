package blockchain

import (
	"context"
	"fmt"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// BTCAdapter implements ChainAdapter for Bitcoin. It is pull-only: Bitcoin
// Core exposes no Go-native push subscription this adapter uses, so the
// pipeline always polls TipHeight.
type BTCAdapter struct {
	client *BTCClient
	retry  RetryPolicy
}

func NewBTCAdapter(client *BTCClient) *BTCAdapter {
	return &BTCAdapter{client: client, retry: DefaultRetryPolicy()}
}

func (a *BTCAdapter) TipHeight(ctx context.Context) (uint64, error) {
	var height uint64
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		h, err := a.client.GetBlockCount(ctx)
		if err != nil {
			return err
		}
		height = h
		return nil
	})
	return height, err
}

func (a *BTCAdapter) FetchBlock(ctx context.Context, height uint64) (*entities.Block, error) {
	var hash string
	if err := a.retry.Do(ctx, func(ctx context.Context) error {
		h, err := a.client.GetBlockHash(ctx, height)
		if err != nil {
			return err
		}
		hash = h
		return nil
	}); err != nil {
		return nil, fmt.Errorf("get block hash at %d: %w", height, err)
	}

	var block *BTCBlock
	if err := a.retry.Do(ctx, func(ctx context.Context) error {
		b, err := a.client.GetBlock(ctx, hash)
		if err != nil {
			return err
		}
		block = b
		return nil
	}); err != nil {
		return nil, fmt.Errorf("get block %s: %w", hash, err)
	}

	return normalizeBTCBlock(block), nil
}

func normalizeBTCBlock(block *BTCBlock) *entities.Block {
	txs := make([]entities.Tx, 0, len(block.Tx))
	for _, tx := range block.Tx {
		outputs := make([]entities.MultiOutputEntry, 0, len(tx.Vout))
		for _, vout := range tx.Vout {
			addr := vout.ScriptPubKey.Address
			if addr == "" && len(vout.ScriptPubKey.Addresses) > 0 {
				addr = vout.ScriptPubKey.Addresses[0]
			}
			if addr == "" {
				continue
			}
			outputs = append(outputs, entities.MultiOutputEntry{
				Address:       addr,
				AmountDecimal: formatBTCAmount(vout.Value),
			})
		}
		if len(outputs) == 0 {
			continue
		}

		inputAddr := ""
		if len(tx.Vin) > 0 && tx.Vin[0].PrevOut != nil {
			inputAddr = tx.Vin[0].PrevOut.ScriptPubKey.Address
		}

		txs = append(txs, entities.Tx{
			Kind: entities.TxMultiOutput,
			Hash: tx.TxID,
			MultiOutput: &entities.MultiOutput{
				TxID:              tx.TxID,
				Outputs:           outputs,
				InputFirstAddress: inputAddr,
			},
		})
	}

	return &entities.Block{
		Height: block.Height,
		Hash:   block.Hash,
		Txs:    txs,
	}
}

// formatBTCAmount renders a getblock vout value (already decimal BTC) with
// full 8-decimal precision, avoiding float string formatting's trailing
// exponent or rounding surprises.
func formatBTCAmount(value float64) string {
	return fmt.Sprintf("%.8f", value)
}

func (a *BTCAdapter) SupportsPush() bool { return false }

func (a *BTCAdapter) Subscribe(ctx context.Context) (<-chan uint64, error) {
	return nil, fmt.Errorf("btc adapter: push mode not supported")
}

func (a *BTCAdapter) Close() {}
