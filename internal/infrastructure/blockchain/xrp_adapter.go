package blockchain

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// dropsPerXRP converts drops (the integer Amount form for native XRP
// payments) to decimal XRP.
const dropsPerXRP = 1_000_000

// XRPAdapter implements ChainAdapter for the XRP Ledger. Pull-only: every
// tick issues a fresh server_info/ledger request/response pair.
type XRPAdapter struct {
	client *XRPClient
	retry  RetryPolicy
}

func NewXRPAdapter(client *XRPClient) *XRPAdapter {
	return &XRPAdapter{client: client, retry: DefaultRetryPolicy()}
}

func (a *XRPAdapter) TipHeight(ctx context.Context) (uint64, error) {
	var seq uint64
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		info, err := a.client.ServerInfo(ctx)
		if err != nil {
			return err
		}
		seq = info.Info.ValidatedLedger.Seq
		return nil
	})
	return seq, err
}

func (a *XRPAdapter) FetchBlock(ctx context.Context, height uint64) (*entities.Block, error) {
	var ledger *XRPLedger
	err := a.retry.Do(ctx, func(ctx context.Context) error {
		l, err := a.client.Ledger(ctx, height)
		if err != nil {
			return err
		}
		ledger = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch xrp ledger %d: %w", height, err)
	}
	return normalizeXRPLedger(ledger), nil
}

func normalizeXRPLedger(ledger *XRPLedger) *entities.Block {
	txs := make([]entities.Tx, 0, len(ledger.Ledger.Transactions))
	for _, tx := range ledger.Ledger.Transactions {
		if tx.TransactionType != "Payment" {
			continue
		}
		amount, ok := decodeXRPAmount(tx.Amount)
		if !ok {
			continue
		}
		txs = append(txs, entities.Tx{
			Kind: entities.TxPayment,
			Hash: tx.Hash,
			Payment: &entities.Payment{
				From:          tx.Account,
				To:            tx.Destination,
				AmountDecimal: amount,
			},
		})
	}

	height, _ := ledger.Ledger.LedgerIndex.Int64()
	return &entities.Block{
		Height: uint64(height),
		Hash:   ledger.Ledger.LedgerHash,
		Txs:    txs,
	}
}

// decodeXRPAmount normalizes the Amount union: a plain string is drops of
// native XRP, an object is an issued currency already carrying a decimal
// "value" field. Only native-XRP payments are reported here; issued
// currencies are outside this tracker's scope and are skipped.
func decodeXRPAmount(amount any) (string, bool) {
	switch v := amount.(type) {
	case string:
		drops, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return "", false
		}
		return decimal.New(drops, 0).DivRound(decimal.New(dropsPerXRP, 0), 6).String(), true
	default:
		return "", false
	}
}

func (a *XRPAdapter) SupportsPush() bool { return false }

func (a *XRPAdapter) Subscribe(ctx context.Context) (<-chan uint64, error) {
	return nil, fmt.Errorf("xrp adapter: push mode not supported")
}

func (a *XRPAdapter) Close() {
	a.client.Close()
}
