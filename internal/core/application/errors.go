package application

import (
	"errors"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
)

var (
	// ErrWalletNotFound is returned when no wallet has been persisted yet.
	ErrWalletNotFound = domain.ErrWalletNotFound
	// ErrFundingFailed is returned when the faucet did not fund a wallet,
	// either because it refused or because it could not be reached.
	ErrFundingFailed = errors.New("wallet funding failed")
	// ErrInsufficientBalance is returned when the fresh ledger balance does
	// not cover the batch total.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrPrepareFailed is returned when the ledger client could not compose
	// and sign the transfer bundle.
	ErrPrepareFailed = errors.New("failed to prepare transfer")
	// ErrSubmitFailed is returned when the ledger rejected or did not receive
	// the signed bundle.
	ErrSubmitFailed = errors.New("failed to submit transfer")
	// ErrConfirmationTimeout is reported when polling ran out of attempts.
	ErrConfirmationTimeout = errors.New("transfer not confirmed in time")
	// ErrBalanceUnavailable is returned when the ledger balance could not be
	// determined, as opposed to being zero.
	ErrBalanceUnavailable = errors.New("balance unavailable")
	// ErrWalletPersistFailed is returned when the wallet could not be stored
	// after a transfer was already submitted.
	ErrWalletPersistFailed = errors.New("failed to persist advanced wallet")
	// ErrEngineHalted is returned by every settlement attempt after a submitted
	// transfer could not be recorded in the wallet store.
	ErrEngineHalted = errors.New("settlement halted after wallet persist failure, operator action required")
)
