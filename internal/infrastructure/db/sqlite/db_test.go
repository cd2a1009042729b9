package sqlitedb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "settler.db")
	ctx := context.Background()

	db, err := OpenDb(dbPath)
	require.NoError(t, err)

	var (
		version int64
		dirty   bool
	)
	row := db.QueryRowContext(ctx, "SELECT version, dirty FROM schema_migrations")
	require.NoError(t, row.Scan(&version, &dirty))
	require.Equal(t, int64(20241018120000), version)
	require.False(t, dirty)

	repo, err := NewWalletRepository(db)
	require.NoError(t, err)
	wallet := domain.Wallet{Seed: "seed", Address: "addr", KeyIndex: 1, Balance: 10}
	require.NoError(t, repo.SaveWallet(ctx, wallet))
	require.NoError(t, db.Close())

	// reopening an up to date db is a no-op
	db, err = OpenDb(dbPath)
	require.NoError(t, err)
	defer db.Close()

	repo, err = NewWalletRepository(db)
	require.NoError(t, err)
	got, err := repo.GetWallet(ctx)
	require.NoError(t, err)
	require.Equal(t, wallet, *got)
}

func TestNewRepositories(t *testing.T) {
	_, err := NewWalletRepository(nil)
	require.Error(t, err)
	_, err = NewPaymentRepository(nil)
	require.Error(t, err)
}
