package confirmation

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

type fakeDeposits struct {
	deposits   []entities.Deposit
	updateErrs map[uuid.UUID]error
}

func (f *fakeDeposits) Insert(ctx context.Context, deposit *entities.Deposit) error { return nil }

func (f *fakeDeposits) FindByKey(ctx context.Context, key entities.DepositKey) (*entities.Deposit, error) {
	return nil, nil
}

func (f *fakeDeposits) FindByID(ctx context.Context, id uuid.UUID) (*entities.Deposit, error) {
	for i := range f.deposits {
		if f.deposits[i].ID == id {
			return &f.deposits[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDeposits) FindPending(ctx context.Context, target entities.Target) ([]entities.Deposit, error) {
	return f.deposits, nil
}

func (f *fakeDeposits) UpdateConfirmations(ctx context.Context, id uuid.UUID, confirmations int64, status entities.DepositStatus) error {
	if err, ok := f.updateErrs[id]; ok {
		return err
	}
	for i := range f.deposits {
		if f.deposits[i].ID == id {
			f.deposits[i].Confirmations = confirmations
			f.deposits[i].Status = status
		}
	}
	return nil
}

// Confirm is never called by Updater directly — that happens inside the
// Ledger Applier, exercised by fakeApplier below — so this only exists to
// satisfy the DepositRepository interface.
func (f *fakeDeposits) Confirm(ctx context.Context, id uuid.UUID, confirmations int64) (bool, error) {
	return false, nil
}

type fakeApplier struct {
	credited      []uuid.UUID
	confirmations map[uuid.UUID]int64
	errFor        map[uuid.UUID]error
}

// Credit stands in for the Ledger Applier's atomic confirm-and-credit. The
// Updater never flips deposit.Status itself for a confirmed transition, so
// these tests assert against credited/confirmations rather than against
// fakeDeposits' rows for that case.
func (a *fakeApplier) Credit(ctx context.Context, depositID uuid.UUID, confirmations int64) error {
	if err, ok := a.errFor[depositID]; ok {
		return err
	}
	a.credited = append(a.credited, depositID)
	if a.confirmations == nil {
		a.confirmations = map[uuid.UUID]int64{}
	}
	a.confirmations[depositID] = confirmations
	return nil
}

func fixedRequired(n int64) RequiredConfirmations {
	return func(entities.Target) int64 { return n }
}

func TestUpdater_AdvancesConfirmingWithoutCrediting(t *testing.T) {
	blockNumber := int64(1000)
	id := uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: id, Status: entities.DepositPending, BlockNumber: &blockNumber},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{}}

	u := New(deposits, applier, fixedRequired(12))
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 1005))

	require.Equal(t, int64(5), deposits.deposits[0].Confirmations)
	require.Equal(t, entities.DepositConfirming, deposits.deposits[0].Status)
	require.Empty(t, applier.credited)
}

func TestUpdater_CreditsExactlyOnceOnFirstConfirmedTransition(t *testing.T) {
	blockNumber := int64(1000)
	id := uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: id, Status: entities.DepositConfirming, Confirmations: 11, BlockNumber: &blockNumber},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{}}

	u := New(deposits, applier, fixedRequired(12))
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 1012))

	// The Updater never writes DepositConfirmed itself; it delegates the
	// confirmed transition (and its atomic credit) entirely to the applier.
	require.Equal(t, entities.DepositConfirming, deposits.deposits[0].Status)
	require.Equal(t, []uuid.UUID{id}, applier.credited)
	require.Equal(t, int64(12), applier.confirmations[id])
}

func TestUpdater_StaysPendingOnCreationBlock(t *testing.T) {
	blockNumber := int64(1000)
	id := uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: id, Status: entities.DepositPending, BlockNumber: &blockNumber},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{}}

	u := New(deposits, applier, fixedRequired(12))
	// The tip is the same height as the deposit's own block, as it is on
	// the block that creates the deposit: confirmations is 0, not 1.
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 1000))

	require.Equal(t, int64(0), deposits.deposits[0].Confirmations)
	require.Equal(t, entities.DepositPending, deposits.deposits[0].Status)
	require.Empty(t, applier.credited)
}

func TestUpdater_AlreadyConfirmedNeverReCredited(t *testing.T) {
	blockNumber := int64(1000)
	id := uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: id, Status: entities.DepositConfirmed, Confirmations: 20, BlockNumber: &blockNumber},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{}}

	u := New(deposits, applier, fixedRequired(12))
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 1050))

	require.Equal(t, entities.DepositConfirmed, deposits.deposits[0].Status)
	require.Empty(t, applier.credited)
}

func TestUpdater_NegativeConfirmationsFlooredAtZero(t *testing.T) {
	blockNumber := int64(1000)
	id := uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: id, Status: entities.DepositConfirming, Confirmations: 3, BlockNumber: &blockNumber},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{}}

	u := New(deposits, applier, fixedRequired(12))
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 990))

	require.Equal(t, int64(0), deposits.deposits[0].Confirmations)
	require.Equal(t, entities.DepositConfirming, deposits.deposits[0].Status)
	require.Empty(t, applier.credited)
}

func TestUpdater_CreditFailureLogsButDoesNotAbortOtherDeposits(t *testing.T) {
	blockA, blockB := int64(1000), int64(1000)
	idA, idB := uuid.New(), uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: idA, Status: entities.DepositConfirming, Confirmations: 11, BlockNumber: &blockA},
		{ID: idB, Status: entities.DepositConfirming, Confirmations: 11, BlockNumber: &blockB},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{idA: fmt.Errorf("balance row missing")}}

	u := New(deposits, applier, fixedRequired(12))
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 1012))

	// The Updater never writes DepositConfirmed itself; idA's row stays
	// DepositConfirming here since Credit failed for it and was never
	// retried within this tick.
	require.Equal(t, entities.DepositConfirming, deposits.deposits[0].Status)
	require.Equal(t, entities.DepositConfirming, deposits.deposits[1].Status)
	require.Equal(t, []uuid.UUID{idB}, applier.credited)
}

func TestUpdater_SkipsDepositsWithoutBlockNumber(t *testing.T) {
	id := uuid.New()
	deposits := &fakeDeposits{deposits: []entities.Deposit{
		{ID: id, Status: entities.DepositPending, BlockNumber: nil},
	}}
	applier := &fakeApplier{errFor: map[uuid.UUID]error{}}

	u := New(deposits, applier, fixedRequired(12))
	require.NoError(t, u.Update(context.Background(), entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet}, 1050))

	require.Equal(t, entities.DepositPending, deposits.deposits[0].Status)
}
