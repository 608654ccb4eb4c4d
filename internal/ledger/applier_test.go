package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
)

type passthroughUoW struct{}

func (passthroughUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughUoW) WithLock(ctx context.Context) context.Context { return ctx }

type fakeDeposits struct {
	deposit      *entities.Deposit
	confirmed    bool
	confirmErr   error
	confirmCalls int
}

func (f *fakeDeposits) Insert(ctx context.Context, deposit *entities.Deposit) error { return nil }
func (f *fakeDeposits) FindByKey(ctx context.Context, key entities.DepositKey) (*entities.Deposit, error) {
	return f.deposit, nil
}
func (f *fakeDeposits) FindByID(ctx context.Context, id uuid.UUID) (*entities.Deposit, error) {
	if f.deposit == nil || f.deposit.ID != id {
		return nil, domainerrors.ErrNotFound
	}
	return f.deposit, nil
}
func (f *fakeDeposits) FindPending(ctx context.Context, target entities.Target) ([]entities.Deposit, error) {
	return nil, nil
}
func (f *fakeDeposits) UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int64, status entities.DepositStatus) error {
	return nil
}

// Confirm mimics the storage-layer compare-and-set: the first call for a
// deposit performs the transition and reports true, every call after that
// reports false, matching the "already confirmed" no-op branch.
func (f *fakeDeposits) Confirm(ctx context.Context, id uuid.UUID, confirmations int64) (bool, error) {
	f.confirmCalls++
	if f.confirmErr != nil {
		return false, f.confirmErr
	}
	if f.confirmed {
		return false, nil
	}
	f.confirmed = true
	return true, nil
}

type fakeTokens struct {
	token *entities.Token
}

func (f *fakeTokens) FindBy(ctx context.Context, query entities.TokenQuery) (*entities.Token, error) {
	return f.token, nil
}
func (f *fakeTokens) FindByID(ctx context.Context, id uuid.UUID) (*entities.Token, error) {
	if f.token == nil || f.token.ID != id {
		return nil, domainerrors.ErrNotFound
	}
	return f.token, nil
}
func (f *fakeTokens) ListByBlockchain(ctx context.Context, chain entities.ChainKey) ([]entities.Token, error) {
	return []entities.Token{*f.token}, nil
}

type fakeBalances struct {
	credits []string
	symbol  string
	amount  decimal.Decimal
	err     error
}

func (f *fakeBalances) Credit(ctx context.Context, userID uuid.UUID, symbol string, amount decimal.Decimal) error {
	if f.err != nil {
		return f.err
	}
	f.symbol = symbol
	f.amount = amount
	f.credits = append(f.credits, symbol)
	return nil
}

func TestApplier_CreditsConfirmedDepositExactlyOnce(t *testing.T) {
	depositID, tokenID, userID := uuid.New(), uuid.New(), uuid.New()
	deposits := &fakeDeposits{deposit: &entities.Deposit{ID: depositID, UserID: userID, TokenID: tokenID, Amount: "1.5", Status: entities.DepositConfirming}}
	tokens := &fakeTokens{token: &entities.Token{ID: tokenID, Symbol: "ETH", Decimals: 18}}
	balances := &fakeBalances{}

	a := New(passthroughUoW{}, deposits, tokens, balances)
	require.NoError(t, a.Credit(context.Background(), depositID, 12))

	require.Equal(t, []string{"ETH"}, balances.credits)
	require.True(t, balances.amount.Equal(decimal.RequireFromString("1.5")))

	// A second call for the same deposit is a no-op, not a double credit,
	// because Confirm's compare-and-set reports no change the second time.
	require.NoError(t, a.Credit(context.Background(), depositID, 12))
	require.Len(t, balances.credits, 1)
	require.Equal(t, 2, deposits.confirmCalls)
}

func TestApplier_NoBalanceTouchWhenConfirmFails(t *testing.T) {
	depositID, tokenID, userID := uuid.New(), uuid.New(), uuid.New()
	deposits := &fakeDeposits{
		deposit:    &entities.Deposit{ID: depositID, UserID: userID, TokenID: tokenID, Amount: "1.5", Status: entities.DepositConfirming},
		confirmErr: domainerrors.ErrNotFound,
	}
	tokens := &fakeTokens{token: &entities.Token{ID: tokenID, Symbol: "ETH"}}
	balances := &fakeBalances{}

	a := New(passthroughUoW{}, deposits, tokens, balances)
	err := a.Credit(context.Background(), depositID, 12)

	require.Error(t, err)
	require.Empty(t, balances.credits)
}

func TestApplier_UsesBaseSymbolOverSymbolWhenSet(t *testing.T) {
	depositID, tokenID, userID := uuid.New(), uuid.New(), uuid.New()
	deposits := &fakeDeposits{deposit: &entities.Deposit{ID: depositID, UserID: userID, TokenID: tokenID, Amount: "10", Status: entities.DepositConfirming}}
	token := entities.Token{ID: tokenID, Symbol: "USDT-ERC20"}
	token.BaseSymbol = null.NewString("USDT", true)
	tokens := &fakeTokens{token: &token}
	balances := &fakeBalances{}

	a := New(passthroughUoW{}, deposits, tokens, balances)
	require.NoError(t, a.Credit(context.Background(), depositID, 20))
	require.Equal(t, "USDT", balances.symbol)
}
