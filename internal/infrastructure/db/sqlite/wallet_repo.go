package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/db/sqlite/sqlc/queries"
)

type walletRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewWalletRepository(db *sql.DB) (domain.WalletRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("cannot open wallet repository: db is nil")
	}
	return &walletRepository{db: db, querier: queries.New(db)}, nil
}

func (r *walletRepository) GetWallet(ctx context.Context) (*domain.Wallet, error) {
	row, err := r.querier.GetWallet(ctx, domain.WalletKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &domain.Wallet{
		Seed:     row.Seed,
		Address:  row.Address,
		KeyIndex: uint32(row.KeyIndex),
		Balance:  uint64(row.Balance),
	}, nil
}

func (r *walletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return fmt.Errorf("invalid wallet: %s", err)
	}
	return r.querier.UpsertWallet(ctx, queries.UpsertWalletParams{
		Key:      domain.WalletKey,
		Seed:     wallet.Seed,
		Address:  wallet.Address,
		KeyIndex: int64(wallet.KeyIndex),
		Balance:  int64(wallet.Balance),
	})
}

// Close is a no-op: the db is owned by whoever opened it.
func (r *walletRepository) Close() {}
