package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

func TestWalletRepository_ListByTarget(t *testing.T) {
	db := newTestDB(t)
	createWalletTable(t, db)
	repo := NewWalletRepository(db)
	ctx := context.Background()
	now := time.Now()

	userID := uuid.New()
	mustExec(t, db, `INSERT INTO wallets(id,user_id,address,chain,network,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		uuid.New().String(), userID.String(), "0xAbC", "eth", "mainnet", now, now)
	mustExec(t, db, `INSERT INTO wallets(id,user_id,address,chain,network,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		uuid.New().String(), userID.String(), "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", "trx", "mainnet", now, now)
	mustExec(t, db, `INSERT INTO wallets(id,user_id,address,chain,network,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		uuid.New().String(), userID.String(), "0xDeF", "eth", "testnet", now, now)

	wallets, err := repo.ListByTarget(ctx, entities.Target{Chain: entities.ChainETH, Network: entities.NetworkMainnet})
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	require.Equal(t, "0xAbC", wallets[0].Address)
	require.Equal(t, userID, wallets[0].UserID)
}
