package domain

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// PaymentQueueEntry is a pending payment towards Recipient.
type PaymentQueueEntry struct {
	Id        string
	Recipient string
	Value     uint64
	Tag       string
	CreatedAt int64
}

func NewPaymentQueueEntry(recipient string, value uint64, tag string) (*PaymentQueueEntry, error) {
	if len(recipient) <= 0 {
		return nil, fmt.Errorf("missing recipient")
	}
	return &PaymentQueueEntry{
		Id:        uuid.New().String(),
		Recipient: recipient,
		Value:     value,
		Tag:       tag,
		CreatedAt: time.Now().UnixNano(),
	}, nil
}

// PaymentRepository is the payment queue. Acknowledged entries are never
// returned again by GetPendingPayments.
type PaymentRepository interface {
	AddPayments(ctx context.Context, entries []PaymentQueueEntry) (count int, err error)
	GetPendingPayments(ctx context.Context) ([]PaymentQueueEntry, error)
	AckPayments(ctx context.Context, ids []string) (count int, err error)
	Close()
}

// TransferBatch groups the queue snapshot of one settlement cycle.
type TransferBatch struct {
	Id               string
	Entries          []PaymentQueueEntry
	TotalAmount      uint64
	RemainderAddress string
}

func NewTransferBatch(entries []PaymentQueueEntry) (*TransferBatch, error) {
	var total uint64
	for _, e := range entries {
		if e.Value > math.MaxUint64-total {
			return nil, fmt.Errorf("batch total overflows")
		}
		total += e.Value
	}
	return &TransferBatch{
		Id:          uuid.New().String(),
		Entries:     entries,
		TotalAmount: total,
	}, nil
}

func (b *TransferBatch) EntryIds() []string {
	ids := make([]string, 0, len(b.Entries))
	for _, e := range b.Entries {
		ids = append(ids, e.Id)
	}
	return ids
}

func (b *TransferBatch) IsEmpty() bool {
	return len(b.Entries) <= 0 || b.TotalAmount == 0
}
