package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const paymentsDir = "payments"

type paymentRepository struct {
	store *badgerhold.Store
}

func NewPaymentRepository(baseDir string, logger badger.Logger) (domain.PaymentRepository, error) {
	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, paymentsDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open payment queue store: %s", err)
	}
	return &paymentRepository{store}, nil
}

func (r *paymentRepository) AddPayments(
	ctx context.Context, entries []domain.PaymentQueueEntry,
) (int, error) {
	count := 0
	for _, entry := range entries {
		if err := r.insert(ctx, entry); err != nil {
			if errors.Is(err, badgerhold.ErrKeyExists) {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

func (r *paymentRepository) GetPendingPayments(
	ctx context.Context,
) ([]domain.PaymentQueueEntry, error) {
	var entries []domain.PaymentQueueEntry
	var err error
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		err = r.store.TxFind(tx, &entries, nil)
	} else {
		err = r.store.Find(&entries, nil)
	}
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt < entries[j].CreatedAt
	})
	return entries, nil
}

func (r *paymentRepository) AckPayments(ctx context.Context, ids []string) (int, error) {
	count := 0
	for _, id := range ids {
		if err := r.delete(ctx, id); err != nil {
			if errors.Is(err, badgerhold.ErrNotFound) {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

func (r *paymentRepository) Close() {
	// nolint:all
	r.store.Close()
}

func (r *paymentRepository) insert(ctx context.Context, entry domain.PaymentQueueEntry) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxInsert(tx, entry.Id, entry)
	}
	return r.store.Insert(entry.Id, entry)
}

func (r *paymentRepository) delete(ctx context.Context, id string) error {
	if ctx.Value("tx") != nil {
		tx := ctx.Value("tx").(*badger.Txn)
		return r.store.TxDelete(tx, id, domain.PaymentQueueEntry{})
	}
	return r.store.Delete(id, domain.PaymentQueueEntry{})
}
