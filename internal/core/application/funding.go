package application

import (
	"context"
	"fmt"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/ArkLabsHQ/settler/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// fundingManager brings a depleted wallet to a spendable state. Depleted
// wallets are abandoned: funding always targets a brand new seed.
type fundingManager struct {
	cfg      Config
	keys     ports.KeyService
	faucet   ports.Faucet
	balances *balanceGateway
	wallets  domain.WalletRepository
	log      log.FieldLogger
}

func newFundingManager(
	cfg Config, keys ports.KeyService, faucet ports.Faucet,
	balances *balanceGateway, wallets domain.WalletRepository,
) *fundingManager {
	return &fundingManager{
		cfg, keys, faucet, balances, wallets, cfg.logger("funding"),
	}
}

// FundNewWallet generates a fresh wallet, asks the faucet to fund it and
// persists it only once the faucet accepted. The previously stored wallet
// is left untouched on failure.
func (m *fundingManager) FundNewWallet(ctx context.Context) (*domain.Wallet, error) {
	wallet, err := m.generateWallet()
	if err != nil {
		return nil, err
	}

	logger := m.log.WithField("address", wallet.Address)
	logger.Info("requesting funds for new wallet")

	if err := m.requestFunds(ctx, wallet.Address); err != nil {
		logger.WithError(err).Warn("new wallet not funded, discarding it")
		return nil, err
	}

	funded := wallet.WithBalance(m.balances.GetBalance(ctx, wallet.Address))
	if err := m.wallets.SaveWallet(ctx, funded); err != nil {
		return nil, fmt.Errorf("failed to persist funded wallet: %w", err)
	}
	logger.WithField("balance", funded.Balance).Info("new wallet funded")
	return &funded, nil
}

// TopUp requests faucet funds for the wallet's current address and stores
// the refreshed balance.
func (m *fundingManager) TopUp(ctx context.Context, wallet domain.Wallet) (*domain.Wallet, error) {
	logger := m.log.WithFields(log.Fields{
		"address": wallet.Address, "key_index": wallet.KeyIndex,
	})
	logger.Info("requesting funds for current wallet")

	if err := m.requestFunds(ctx, wallet.Address); err != nil {
		logger.WithError(err).Warn("top up failed")
		return nil, err
	}

	funded := wallet.WithBalance(m.balances.GetBalance(ctx, wallet.Address))
	if err := m.wallets.SaveWallet(ctx, funded); err != nil {
		return nil, fmt.Errorf("failed to persist funded wallet: %w", err)
	}
	logger.WithField("balance", funded.Balance).Info("wallet topped up")
	return &funded, nil
}

func (m *fundingManager) generateWallet() (domain.Wallet, error) {
	seed, err := m.keys.NewSeed()
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("failed to generate seed: %w", err)
	}
	address, err := m.keys.DeriveAddress(seed, 0, m.cfg.Security)
	if err != nil {
		return domain.Wallet{}, fmt.Errorf("failed to derive address: %w", err)
	}
	return domain.Wallet{Seed: seed, Address: address, KeyIndex: 0}, nil
}

func (m *fundingManager) requestFunds(ctx context.Context, address string) error {
	ok, err := m.faucet.RequestFunds(ctx, address, m.cfg.FaucetAmount)
	if err != nil {
		metrics.FundingRequests.WithLabelValues("error").Inc()
		return fmt.Errorf("%w: %s", ErrFundingFailed, err)
	}
	if !ok {
		metrics.FundingRequests.WithLabelValues("rejected").Inc()
		return fmt.Errorf("%w: faucet rejected request", ErrFundingFailed)
	}
	metrics.FundingRequests.WithLabelValues("success").Inc()
	return nil
}
