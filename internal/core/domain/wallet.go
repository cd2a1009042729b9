package domain

import (
	"context"
	"errors"
	"fmt"
)

// WalletKey is the fixed logical name the active wallet is stored under.
const WalletKey = "wallet"

var ErrWalletNotFound = errors.New("wallet not found")

// Wallet is the single unit of custody. Address is always derived from Seed
// at KeyIndex, and KeyIndex only moves forward.
type Wallet struct {
	Seed     string
	Address  string
	KeyIndex uint32
	Balance  uint64
}

func (w Wallet) Validate() error {
	if len(w.Seed) <= 0 {
		return fmt.Errorf("missing seed")
	}
	if len(w.Address) <= 0 {
		return fmt.Errorf("missing address")
	}
	return nil
}

// Next returns the wallet state that supersedes w once a transfer spending
// from w.Address has been submitted.
func (w Wallet) Next(remainderAddress string, balance uint64) Wallet {
	return Wallet{
		Seed:     w.Seed,
		Address:  remainderAddress,
		KeyIndex: w.KeyIndex + 1,
		Balance:  balance,
	}
}

// WithBalance returns a copy of w with the given balance.
func (w Wallet) WithBalance(balance uint64) Wallet {
	w.Balance = balance
	return w
}

// Public strips the secret material.
func (w Wallet) Public() Wallet {
	w.Seed = ""
	return w
}

// WalletRepository persists the single active wallet, last write wins.
type WalletRepository interface {
	GetWallet(ctx context.Context) (*Wallet, error)
	SaveWallet(ctx context.Context, wallet Wallet) error
	Close()
}
