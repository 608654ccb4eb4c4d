package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	domainerrors "github.com/tekiplanet/safejet-processing-deposit/internal/domain/errors"
)

func TestCheckpointRepository_GetSetAdvance(t *testing.T) {
	db := newTestDB(t)
	createCheckpointTable(t, db)
	repo := NewCheckpointRepository(db)
	ctx := context.Background()
	target := entities.Target{Chain: entities.ChainBTC, Network: entities.NetworkMainnet}

	_, ok, err := repo.Get(ctx, target)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Set(ctx, target, 100))

	height, ok, err := repo.Get(ctx, target)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(100), height)

	require.NoError(t, repo.Set(ctx, target, 101))
	height, _, err = repo.Get(ctx, target)
	require.NoError(t, err)
	require.Equal(t, uint64(101), height)
}

func TestCheckpointRepository_RejectsRegression(t *testing.T) {
	db := newTestDB(t)
	createCheckpointTable(t, db)
	repo := NewCheckpointRepository(db)
	ctx := context.Background()
	target := entities.Target{Chain: entities.ChainXRP, Network: entities.NetworkTestnet}

	require.NoError(t, repo.Set(ctx, target, 50))
	err := repo.Set(ctx, target, 49)
	require.ErrorIs(t, err, domainerrors.ErrCheckpointMismatch)
}
