package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/db/sqlite/sqlc/queries"
	log "github.com/sirupsen/logrus"
)

type paymentRepository struct {
	db      *sql.DB
	querier *queries.Queries
}

func NewPaymentRepository(db *sql.DB) (domain.PaymentRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("cannot open payment repository: db is nil")
	}
	return &paymentRepository{db: db, querier: queries.New(db)}, nil
}

func (r *paymentRepository) AddPayments(
	ctx context.Context, entries []domain.PaymentQueueEntry,
) (int, error) {
	count := 0
	if err := r.execTx(ctx, func(q *queries.Queries) error {
		for _, e := range entries {
			n, err := q.InsertPayment(ctx, queries.InsertPaymentParams{
				ID:        e.Id,
				Recipient: e.Recipient,
				Value:     int64(e.Value),
				Tag:       e.Tag,
				CreatedAt: e.CreatedAt,
			})
			if err != nil {
				return err
			}
			count += int(n)
		}
		return nil
	}); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *paymentRepository) GetPendingPayments(
	ctx context.Context,
) ([]domain.PaymentQueueEntry, error) {
	rows, err := r.querier.ListPendingPayments(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.PaymentQueueEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.PaymentQueueEntry{
			Id:        row.ID,
			Recipient: row.Recipient,
			Value:     uint64(row.Value),
			Tag:       row.Tag,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

func (r *paymentRepository) AckPayments(ctx context.Context, ids []string) (int, error) {
	count := 0
	if err := r.execTx(ctx, func(q *queries.Queries) error {
		for _, id := range ids {
			n, err := q.DeletePayment(ctx, id)
			if err != nil {
				return err
			}
			count += int(n)
		}
		return nil
	}); err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op: the db is owned by whoever opened it.
func (r *paymentRepository) Close() {}

func (r *paymentRepository) execTx(
	ctx context.Context, txBody func(*queries.Queries) error,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	// Rollback is safe to call even if the tx is already closed, so if
	// the tx commits successfully, this is a no-op.
	defer func() {
		err := tx.Rollback()
		switch {
		case errors.Is(err, sql.ErrTxDone):
			return
		case err != nil:
			log.Errorf("unable to rollback db tx: %v", err)
		}
	}()

	if err := txBody(r.querier.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
