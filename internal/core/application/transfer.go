package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/ArkLabsHQ/settler/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// transferOrchestrator settles one batch of queued payments against one
// wallet, spending the whole balance of the current address and routing
// the change to the address at the next derivation index.
type transferOrchestrator struct {
	cfg      Config
	ledger   ports.LedgerClient
	keys     ports.KeyService
	balances *balanceGateway
	wallets  domain.WalletRepository
	payments domain.PaymentRepository
	poller   *confirmationPoller
	log      log.FieldLogger
}

func newTransferOrchestrator(
	cfg Config, ledger ports.LedgerClient, keys ports.KeyService,
	balances *balanceGateway, wallets domain.WalletRepository,
	payments domain.PaymentRepository,
) *transferOrchestrator {
	logger := cfg.logger("transfer")
	return &transferOrchestrator{
		cfg:      cfg,
		ledger:   ledger,
		keys:     keys,
		balances: balances,
		wallets:  wallets,
		payments: payments,
		poller: &confirmationPoller{
			ledger: ledger,
			clock:  cfg.clock(),
			log:    logger,
		},
		log: logger,
	}
}

// Transfer submits the batch and advances the wallet.
// Any error returned before submission leaves the wallet untouched.
// Once submitted, the advanced wallet is persisted before waiting for
// confirmation and the ledger balance is persisted again afterwards, even
// if confirmation never showed up.
func (o *transferOrchestrator) Transfer(
	ctx context.Context, wallet domain.Wallet, batch *domain.TransferBatch,
) (*TransferResult, error) {
	logger := o.log.WithFields(log.Fields{
		"batch":     batch.Id,
		"address":   wallet.Address,
		"key_index": wallet.KeyIndex,
	})

	balance := o.balances.GetBalance(ctx, wallet.Address)
	if balance == 0 || balance < batch.TotalAmount {
		return nil, fmt.Errorf(
			"%w: %d, needed: %d", ErrInsufficientBalance, balance, batch.TotalAmount,
		)
	}

	remainderAddress, err := o.keys.DeriveAddress(
		wallet.Seed, wallet.KeyIndex+1, o.cfg.Security,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: remainder address: %s", ErrPrepareFailed, err)
	}
	batch.RemainderAddress = remainderAddress

	transfers := make([]ports.Transfer, 0, len(batch.Entries))
	for _, e := range batch.Entries {
		transfers = append(transfers, ports.Transfer{
			Address: e.Recipient, Value: e.Value, Tag: e.Tag,
		})
	}
	opts := ports.TransferOptions{
		Inputs: []ports.Input{{
			Address:  wallet.Address,
			KeyIndex: wallet.KeyIndex,
			Security: o.cfg.Security,
			Balance:  balance,
		}},
		Security:         o.cfg.Security,
		RemainderAddress: remainderAddress,
	}

	signer := walletSigner{o.keys, wallet.Seed}
	bundle, err := o.ledger.PrepareTransfer(ctx, transfers, opts, signer)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrPrepareFailed, err)
	}

	txs, err := o.ledger.Submit(ctx, bundle, o.cfg.Depth, o.cfg.MinWeightMagnitude)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSubmitFailed, err)
	}
	metrics.TransfersSubmitted.Inc()
	metrics.PaymentsSettled.Add(float64(len(batch.Entries)))

	// The spent address must never be used again, whatever happens next.
	optimistic := wallet.Next(remainderAddress, balance-batch.TotalAmount)
	if err := o.wallets.SaveWallet(ctx, optimistic); err != nil {
		logger.WithError(err).Error("transfer submitted but advanced wallet not persisted")
		return nil, fmt.Errorf("%w: %s", ErrWalletPersistFailed, err)
	}
	logger.WithFields(log.Fields{
		"total":        batch.TotalAmount,
		"payments":     len(batch.Entries),
		"transactions": len(txs),
		"remainder":    remainderAddress,
	}).Info("transfer submitted")

	if _, err := o.payments.AckPayments(ctx, batch.EntryIds()); err != nil {
		logger.WithError(err).Error("failed to acknowledge settled payments")
	}

	result := &TransferResult{
		BatchId:      batch.Id,
		TotalAmount:  batch.TotalAmount,
		Payments:     len(batch.Entries),
		Transactions: txs,
		Wallet:       optimistic.Public(),
	}

	if err := o.waitForConfirmation(ctx, result); err != nil {
		logger.WithError(err).Warn("confirmation polling aborted, keeping optimistic wallet")
		return result, err
	}

	o.reconcile(ctx, optimistic, result, logger)
	return result, nil
}

func (o *transferOrchestrator) waitForConfirmation(
	ctx context.Context, result *TransferResult,
) error {
	pollCtx := ctx
	if o.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, o.cfg.PollTimeout)
		defer cancel()
	}

	poll := &ConfirmationPoll{
		Hashes:      result.Hashes(),
		MaxAttempts: o.cfg.PollMaxAttempts,
		Interval:    o.cfg.PollInterval,
	}
	err := o.poller.Poll(pollCtx, poll)
	metrics.ConfirmationPollAttempts.Observe(float64(poll.Attempt))

	switch {
	case err == nil:
		result.Confirmed = true
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, ErrConfirmationTimeout), errors.Is(err, context.DeadlineExceeded):
		metrics.ConfirmationTimeouts.Inc()
		o.log.WithFields(log.Fields{
			"batch":    result.BatchId,
			"attempts": poll.Attempt,
		}).Warn(ErrConfirmationTimeout.Error())
		return nil
	default:
		return err
	}
}

// reconcile replaces the optimistic balance with the one reported by the
// ledger. If the ledger cannot be queried the optimistic wallet is kept.
func (o *transferOrchestrator) reconcile(
	ctx context.Context, optimistic domain.Wallet, result *TransferResult,
	logger log.FieldLogger,
) {
	balance, err := o.balances.LookupBalance(ctx, optimistic.Address)
	if err != nil {
		logger.WithError(err).Warn("failed to reconcile wallet balance")
		return
	}

	confirmed := optimistic.WithBalance(balance)
	if err := o.wallets.SaveWallet(ctx, confirmed); err != nil {
		logger.WithError(err).Warn("failed to persist reconciled wallet")
		return
	}

	result.Reconciled = true
	result.Wallet = confirmed.Public()
	logger.WithFields(log.Fields{
		"balance":   balance,
		"confirmed": result.Confirmed,
	}).Info("wallet reconciled")
}

// walletSigner signs bundles with the wallet keys so that the seed never
// leaves the key service.
type walletSigner struct {
	keys ports.KeyService
	seed string
}

func (s walletSigner) Sign(input ports.Input, digest []byte) ([]byte, error) {
	return s.keys.Sign(s.seed, input.KeyIndex, input.Security, digest)
}
