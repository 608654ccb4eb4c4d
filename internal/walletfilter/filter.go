// Package walletfilter matches normalized chain transactions against the
// wallet directory and writes matches as pending deposits.
package walletfilter

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/internal/observability"
	"github.com/tekiplanet/safejet-processing-deposit/pkg/logger"
)

// DepositWriter filters each transaction in a block against the wallet
// directory and inserts a pending Deposit for every match.
type DepositWriter struct {
	wallets  repositories.WalletRepository
	tokens   repositories.TokenRepository
	deposits repositories.DepositRepository

	// Metrics is optional; a nil value disables recording.
	Metrics *observability.Metrics
}

func NewDepositWriter(wallets repositories.WalletRepository, tokens repositories.TokenRepository, deposits repositories.DepositRepository) *DepositWriter {
	return &DepositWriter{wallets: wallets, tokens: tokens, deposits: deposits}
}

// ProcessBlock filters every transaction in block against the wallet
// directory for target, inserting a pending deposit for each match. A
// per-transaction error is logged and the block continues; only an error
// loading the wallet directory itself aborts the block.
func (w *DepositWriter) ProcessBlock(ctx context.Context, target entities.Target, block *entities.Block) error {
	wallets, err := w.wallets.ListByTarget(ctx, target)
	if err != nil {
		return fmt.Errorf("wallet filter: load wallets for %s: %w", target, err)
	}

	byAddress := indexWallets(wallets)

	for _, tx := range block.Txs {
		if err := w.processTx(ctx, target, block, tx, byAddress); err != nil {
			logger.Warn(ctx, "wallet filter: skipping transaction",
				zap.String("chain", target.Chain.String()),
				zap.String("network", target.Network.String()),
				zap.Uint64("blockNumber", block.Height),
				zap.String("txHash", tx.Hash),
				zap.String("message", err.Error()),
			)
		}
	}

	return nil
}

func indexWallets(wallets []entities.Wallet) map[string]entities.Wallet {
	byAddress := make(map[string]entities.Wallet, len(wallets))
	for _, wt := range wallets {
		byAddress[wt.MatchKey()] = wt
	}
	return byAddress
}

func (w *DepositWriter) processTx(ctx context.Context, target entities.Target, block *entities.Block, tx entities.Tx, byAddress map[string]entities.Wallet) error {
	switch tx.Kind {
	case entities.TxNativeTransfer:
		return w.matchSingle(ctx, target, block, tx.Hash, byAddress, tx.NativeTransfer.To, tx.NativeTransfer.From, "",
			rawUnits(tx.NativeTransfer.AmountRaw),
			entities.TokenQuery{Blockchain: target.Chain, NetworkVersion: entities.NetworkVersionNative, ActiveOnly: true})

	case entities.TxTokenTransfer:
		// Tron's legacy TRC-10 TransferAssetContract carries an asset symbol
		// instead of a contract address; resolve the token by symbol in that
		// case rather than by an address the chain never provides.
		query := entities.TokenQuery{Blockchain: target.Chain, ContractAddress: tx.TokenTransfer.ContractAddress, ActiveOnly: true}
		if tx.TokenTransfer.ContractAddress == "" && tx.TokenTransfer.Symbol != "" {
			query = entities.TokenQuery{Blockchain: target.Chain, Symbol: tx.TokenTransfer.Symbol, ActiveOnly: true}
		}
		return w.matchSingle(ctx, target, block, tx.Hash, byAddress, tx.TokenTransfer.To, tx.TokenTransfer.From, tx.TokenTransfer.ContractAddress,
			rawUnits(tx.TokenTransfer.AmountRaw),
			query)

	case entities.TxMultiOutput:
		var firstErr error
		for _, out := range tx.MultiOutput.Outputs {
			err := w.matchSingle(ctx, target, block, tx.Hash, byAddress, out.Address, tx.MultiOutput.InputFirstAddress, "",
				decimalAmount(out.AmountDecimal),
				entities.TokenQuery{Blockchain: target.Chain, NetworkVersion: entities.NetworkVersionNative, ActiveOnly: true})
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr

	case entities.TxPayment:
		return w.matchSingle(ctx, target, block, tx.Hash, byAddress, tx.Payment.To, tx.Payment.From, "",
			decimalAmount(tx.Payment.AmountDecimal),
			entities.TokenQuery{Blockchain: target.Chain, NetworkVersion: entities.NetworkVersionNative, ActiveOnly: true})

	default:
		return nil
	}
}

// amountResolver turns a transfer's raw payload into the deposit's final
// human-decimal amount, once the matched token's decimals are known.
type amountResolver func(tokenDecimals int) (decimal.Decimal, error)

// rawUnits treats raw as a base-unit integer that still needs shifting by
// the resolved token's decimals (native and smart-contract transfers).
func rawUnits(raw string) amountResolver {
	return func(tokenDecimals int) (decimal.Decimal, error) {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return decimal.Decimal{}, err
		}
		return v.Shift(-int32(tokenDecimals)), nil
	}
}

// decimalAmount treats raw as already human-decimal (Bitcoin vout value, XRP
// Payment amount normalized by the adapter) and needs no further shifting.
func decimalAmount(raw string) amountResolver {
	return func(int) (decimal.Decimal, error) {
		return decimal.NewFromString(raw)
	}
}

// matchSingle resolves the single destination address of a native/token
// transfer or one Bitcoin output against the wallet directory, and on match
// resolves the token and inserts the deposit. amount is resolved only after
// a wallet match, so a malformed amount on a non-matching transfer never
// surfaces as an error.
func (w *DepositWriter) matchSingle(
	ctx context.Context,
	target entities.Target,
	block *entities.Block,
	txHash string,
	byAddress map[string]entities.Wallet,
	to, from, contractAddress string,
	amount amountResolver,
	query entities.TokenQuery,
) error {
	wallet, ok := byAddress[entities.CanonicalAddress(target.Chain, to)]
	if !ok {
		return nil
	}

	token, err := w.tokens.FindBy(ctx, query)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil // not a tracked asset
		}
		return err
	}

	amt, err := amount(token.Decimals)
	if err != nil {
		return err
	}

	height := int64(block.Height)
	deposit := &entities.Deposit{
		ID:             uuid.New(),
		UserID:         wallet.UserID,
		WalletID:       wallet.ID,
		TokenID:        token.ID,
		TxHash:         txHash,
		Amount:         amt.String(),
		Blockchain:     target.Chain,
		Network:        target.Network,
		NetworkVersion: token.NetworkVersion,
		BlockNumber:    &height,
		Status:         entities.DepositPending,
		Confirmations:  0,
		Metadata: entities.DepositMetadata{
			From:            from,
			ContractAddress: nullContractAddress(contractAddress),
			BlockHash:       block.Hash,
		},
	}

	if err := w.deposits.Insert(ctx, deposit); err != nil {
		return err
	}

	if w.Metrics != nil {
		w.Metrics.DepositsInserted.WithLabelValues(target.Chain.String(), target.Network.String()).Inc()
	}
	return nil
}

func nullContractAddress(address string) null.String {
	return null.NewString(address, address != "")
}
