package db_test

import (
	"context"
	"testing"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/db"
	"github.com/stretchr/testify/require"
)

var (
	dbs = map[string]db.ServiceConfig{
		"badger": {DbType: "badger", DbConfig: []any{"", nil}},
		"sqlite": {DbType: "sqlite", DbConfig: []any{""}},
	}
	testWallet = domain.Wallet{
		Seed:     "reward liar quote property federal print outdoor attitude satoshi favorite special layer",
		Address:  "02a1633cafcc01ebfb6d78e39f687a1f0995c62fc95f51ead10a02ee0be551b5dc",
		KeyIndex: 3,
		Balance:  100,
	}
	testPayments = []domain.PaymentQueueEntry{
		{Id: "p1", Recipient: "recipient1", Value: 30, CreatedAt: 1},
		{Id: "p2", Recipient: "recipient2", Value: 20, Tag: "TAG", CreatedAt: 2},
		{Id: "p3", Recipient: "recipient3", Value: 0, CreatedAt: 3},
	}
)

func TestRepoManager(t *testing.T) {
	for name, cfg := range dbs {
		t.Run(name, func(t *testing.T) {
			svc, err := db.NewService(cfg)
			require.NoError(t, err)
			defer svc.Close()

			testWalletRepository(t, svc.Wallet())
			testPaymentRepository(t, svc.Payments())
		})
	}
}

func TestInvalidService(t *testing.T) {
	_, err := db.NewService(db.ServiceConfig{DbType: "postgres"})
	require.Error(t, err)

	_, err = db.NewService(db.ServiceConfig{DbType: "badger", DbConfig: []any{""}})
	require.Error(t, err)

	_, err = db.NewService(db.ServiceConfig{DbType: "sqlite", DbConfig: []any{1}})
	require.Error(t, err)
}

func TestPersistence(t *testing.T) {
	for name, cfg := range map[string]func(dir string) db.ServiceConfig{
		"badger": func(dir string) db.ServiceConfig {
			return db.ServiceConfig{DbType: "badger", DbConfig: []any{dir, nil}}
		},
		"sqlite": func(dir string) db.ServiceConfig {
			return db.ServiceConfig{DbType: "sqlite", DbConfig: []any{dir}}
		},
	} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()

			svc, err := db.NewService(cfg(dir))
			require.NoError(t, err)
			require.NoError(t, svc.Wallet().SaveWallet(ctx, testWallet))
			svc.Close()

			svc, err = db.NewService(cfg(dir))
			require.NoError(t, err)
			defer svc.Close()

			wallet, err := svc.Wallet().GetWallet(ctx)
			require.NoError(t, err)
			require.Equal(t, testWallet, *wallet)
		})
	}
}

func testWalletRepository(t *testing.T, repo domain.WalletRepository) {
	t.Run("wallet", func(t *testing.T) {
		ctx := context.Background()

		wallet, err := repo.GetWallet(ctx)
		require.ErrorIs(t, err, domain.ErrWalletNotFound)
		require.Nil(t, wallet)

		err = repo.SaveWallet(ctx, domain.Wallet{Address: "addr"})
		require.Error(t, err)

		err = repo.SaveWallet(ctx, testWallet)
		require.NoError(t, err)

		wallet, err = repo.GetWallet(ctx)
		require.NoError(t, err)
		require.Equal(t, testWallet, *wallet)

		next := testWallet.Next("nextaddress", 50)
		err = repo.SaveWallet(ctx, next)
		require.NoError(t, err)

		wallet, err = repo.GetWallet(ctx)
		require.NoError(t, err)
		require.Equal(t, next, *wallet)
	})
}

func testPaymentRepository(t *testing.T, repo domain.PaymentRepository) {
	t.Run("payments", func(t *testing.T) {
		ctx := context.Background()

		entries, err := repo.GetPendingPayments(ctx)
		require.NoError(t, err)
		require.Empty(t, entries)

		count, err := repo.AddPayments(ctx, testPayments)
		require.NoError(t, err)
		require.Equal(t, len(testPayments), count)

		count, err = repo.AddPayments(ctx, testPayments[:1])
		require.NoError(t, err)
		require.Zero(t, count)

		entries, err = repo.GetPendingPayments(ctx)
		require.NoError(t, err)
		require.Equal(t, testPayments, entries)

		count, err = repo.AckPayments(ctx, []string{"p1", "p3", "unknown"})
		require.NoError(t, err)
		require.Equal(t, 2, count)

		entries, err = repo.GetPendingPayments(ctx)
		require.NoError(t, err)
		require.Equal(t, testPayments[1:2], entries)

		count, err = repo.AckPayments(ctx, []string{"p2"})
		require.NoError(t, err)
		require.Equal(t, 1, count)

		entries, err = repo.GetPendingPayments(ctx)
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}
