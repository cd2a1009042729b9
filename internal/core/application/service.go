package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/ArkLabsHQ/settler/internal/metrics"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Service is the settlement controller. Every operation that reads or
// writes the wallet runs under the same lock, so that no two cycles can
// ever spend from the same address.
type Service struct {
	BuildInfo BuildInfo

	cfg          Config
	repoManager  ports.RepoManager
	schedulerSvc ports.SchedulerService

	balances  *balanceGateway
	funding   *fundingManager
	transfers *transferOrchestrator

	mu     sync.Mutex
	halted bool

	ctx    context.Context
	cancel context.CancelFunc

	log log.FieldLogger
}

func NewService(
	buildInfo BuildInfo,
	cfg Config,
	repoManager ports.RepoManager,
	ledger ports.LedgerClient,
	faucet ports.Faucet,
	keys ports.KeyService,
	schedulerSvc ports.SchedulerService,
) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if ledger == nil {
		return nil, fmt.Errorf("missing ledger client")
	}
	if faucet == nil {
		return nil, fmt.Errorf("missing faucet")
	}
	if keys == nil {
		return nil, fmt.Errorf("missing key service")
	}

	balances := newBalanceGateway(ledger, cfg.logger("balance"))
	wallets := repoManager.Wallet()
	ctx, cancel := context.WithCancel(context.Background())

	return &Service{
		BuildInfo:    buildInfo,
		cfg:          cfg,
		repoManager:  repoManager,
		schedulerSvc: schedulerSvc,
		balances:     balances,
		funding:      newFundingManager(cfg, keys, faucet, balances, wallets),
		transfers: newTransferOrchestrator(
			cfg, ledger, keys, balances, wallets, repoManager.Payments(),
		),
		ctx:    ctx,
		cancel: cancel,
		log:    cfg.logger("settlement"),
	}, nil
}

// Start schedules a settlement cycle every interval.
func (s *Service) Start(interval time.Duration) error {
	if s.schedulerSvc == nil {
		return fmt.Errorf("missing scheduler")
	}
	if err := s.schedulerSvc.ScheduleSettlements(interval, s.settleTask); err != nil {
		return err
	}
	s.schedulerSvc.Start()
	s.log.Infof("scheduler started, settling every %s", interval)
	return nil
}

// Stop cancels any in-flight cycle, waits for it to return and stops the
// scheduler. A transfer that is being polled keeps its already persisted
// optimistic state.
func (s *Service) Stop() {
	s.cancel()
	if s.schedulerSvc != nil {
		s.schedulerSvc.Stop()
		s.log.Info("scheduler stopped")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
}

func (s *Service) WhenNextSettlement() time.Time {
	if s.schedulerSvc == nil {
		return time.Time{}
	}
	return s.schedulerSvc.WhenNextSettlement()
}

func (s *Service) settleTask() {
	report, err := s.Settle(s.ctx)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) {
			s.log.Warn("no wallet to settle with")
			return
		}
		s.log.WithError(err).Warn("settlement failed")
		return
	}
	s.log.Debugf("settlement cycle done: %s", report.Outcome)
}

// Settle runs one settlement cycle.
func (s *Service) Settle(ctx context.Context) (*SettlementReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.settle(ctx)
	if err != nil {
		metrics.SettlementErrors.WithLabelValues(errorKind(err)).Inc()
	}
	if report != nil {
		metrics.SettlementCycles.WithLabelValues(string(report.Outcome)).Inc()
		if report.Wallet != nil {
			metrics.WalletKeyIndex.Set(float64(report.Wallet.KeyIndex))
			metrics.WalletBalance.Set(float64(report.Wallet.Balance))
		}
	}
	return report, err
}

func (s *Service) settle(ctx context.Context) (*SettlementReport, error) {
	if s.halted {
		return nil, ErrEngineHalted
	}

	wallet, err := s.repoManager.Wallet().GetWallet(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return &SettlementReport{Outcome: OutcomeNoWallet}, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	logger := s.log.WithFields(log.Fields{
		"address": wallet.Address, "key_index": wallet.KeyIndex,
	})

	balance := s.balances.GetBalance(ctx, wallet.Address)
	logger.WithField("balance", balance).Debug("checked wallet balance")

	if balance == 0 {
		logger.Info("wallet depleted, funding a new one")
		funded, err := s.funding.FundNewWallet(ctx)
		if err != nil {
			return &SettlementReport{Outcome: OutcomeFailed}, err
		}
		view := funded.Public()
		return &SettlementReport{Outcome: OutcomeFunded, Wallet: &view}, nil
	}

	entries, err := s.repoManager.Payments().GetPendingPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read payment queue: %w", err)
	}
	batch, err := domain.NewTransferBatch(entries)
	if err != nil {
		return &SettlementReport{Outcome: OutcomeFailed}, err
	}
	if batch.IsEmpty() {
		return &SettlementReport{Outcome: OutcomeIdle}, nil
	}

	logger.WithFields(log.Fields{
		"payments": len(batch.Entries), "total": batch.TotalAmount,
	}).Info("settling payments")

	result, err := s.transfers.Transfer(ctx, *wallet, batch)
	if err != nil {
		if errors.Is(err, ErrWalletPersistFailed) {
			s.halted = true
		}
		if result == nil {
			return &SettlementReport{Outcome: OutcomeFailed}, err
		}
		view := result.Wallet
		return &SettlementReport{
			Outcome: OutcomeTransferred, Wallet: &view, Transfer: result,
		}, err
	}

	view := result.Wallet
	return &SettlementReport{
		Outcome: OutcomeTransferred, Wallet: &view, Transfer: result,
	}, nil
}

// Bootstrap funds a first wallet if none has been stored yet.
func (s *Service) Bootstrap(ctx context.Context) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wallet, err := s.repoManager.Wallet().GetWallet(ctx)
	if err == nil {
		view := wallet.Public()
		return &view, nil
	}
	if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}

	s.log.Info("no wallet found, funding a new one")
	funded, err := s.funding.FundNewWallet(ctx)
	if err != nil {
		return nil, err
	}
	view := funded.Public()
	return &view, nil
}

// TopUp requests faucet funds for the current wallet address.
func (s *Service) TopUp(ctx context.Context) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.halted {
		return nil, ErrEngineHalted
	}
	wallet, err := s.repoManager.Wallet().GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	funded, err := s.funding.TopUp(ctx, *wallet)
	if err != nil {
		return nil, err
	}
	view := funded.Public()
	return &view, nil
}

// GetWallet returns the stored wallet without its seed.
func (s *Service) GetWallet(ctx context.Context) (*domain.Wallet, error) {
	wallet, err := s.repoManager.Wallet().GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	view := wallet.Public()
	return &view, nil
}

// EnqueuePayments adds entries to the payment queue, assigning an id and a
// creation time to those missing one. Entries of one call keep their order.
func (s *Service) EnqueuePayments(
	ctx context.Context, entries []domain.PaymentQueueEntry,
) (int, error) {
	now := time.Now().UnixNano()
	payments := make([]domain.PaymentQueueEntry, 0, len(entries))
	for i, e := range entries {
		if len(e.Recipient) <= 0 {
			return 0, fmt.Errorf("payment %d: missing recipient", i)
		}
		if len(e.Id) <= 0 {
			e.Id = uuid.New().String()
		}
		if e.CreatedAt <= 0 {
			e.CreatedAt = now + int64(i)
		}
		payments = append(payments, e)
	}
	return s.repoManager.Payments().AddPayments(ctx, payments)
}

func errorKind(err error) string {
	for _, e := range []error{
		ErrWalletNotFound, ErrFundingFailed, ErrInsufficientBalance,
		ErrPrepareFailed, ErrSubmitFailed, ErrWalletPersistFailed,
		ErrEngineHalted, context.Canceled, context.DeadlineExceeded,
	} {
		if errors.Is(err, e) {
			return e.Error()
		}
	}
	return "other"
}
