package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

// createPaymentBridgeTable is a throwaway table with no relation to the
// deposit-tracker schema. It exists purely so the transaction-boundary
// tests (commit/rollback/begin-failure/commit-hook) have something to
// insert into without coupling them to any real domain table.
func createPaymentBridgeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE payment_bridge (
		id TEXT PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		address TEXT NOT NULL,
		chain TEXT NOT NULL,
		network TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createTokenTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE tokens (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		base_symbol TEXT,
		blockchain TEXT NOT NULL,
		contract_address TEXT,
		network_version TEXT NOT NULL,
		decimals INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL,
		metadata TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createDepositTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE deposits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		wallet_id TEXT NOT NULL,
		token_id TEXT NOT NULL,
		tx_hash TEXT NOT NULL,
		amount TEXT NOT NULL,
		blockchain TEXT NOT NULL,
		network TEXT NOT NULL,
		network_version TEXT NOT NULL,
		block_number INTEGER,
		status TEXT NOT NULL,
		confirmations INTEGER NOT NULL DEFAULT 0,
		metadata TEXT,
		credited_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX deposits_tx_wallet_token_uq ON deposits(tx_hash, wallet_id, token_id);`)
}

func createCheckpointTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE system_settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME
	);`)
}

func createWalletBalanceTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallet_balances (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		base_symbol TEXT NOT NULL,
		type TEXT NOT NULL DEFAULT 'spot',
		balance TEXT NOT NULL DEFAULT '0',
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE UNIQUE INDEX wallet_balances_user_symbol_type_uq ON wallet_balances(user_id, base_symbol, type);`)
}
