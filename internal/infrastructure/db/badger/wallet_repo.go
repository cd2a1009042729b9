package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const walletDir = "wallet"

type walletRepository struct {
	store *badgerhold.Store
}

func NewWalletRepository(baseDir string, logger badger.Logger) (domain.WalletRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, walletDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet store: %s", err)
	}
	return &walletRepository{store}, nil
}

func (r *walletRepository) GetWallet(ctx context.Context) (*domain.Wallet, error) {
	var wallet domain.Wallet
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxGet(tx, domain.WalletKey, &wallet)
	} else {
		err = r.store.Get(domain.WalletKey, &wallet)
	}
	if err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &wallet, nil
}

func (r *walletRepository) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	if err := wallet.Validate(); err != nil {
		return fmt.Errorf("invalid wallet: %s", err)
	}
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxUpsert(tx, domain.WalletKey, wallet)
	}
	return r.store.Upsert(domain.WalletKey, wallet)
}

func (r *walletRepository) Close() {
	// nolint:all
	r.store.Close()
}
