package application_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// **** Ledger ****

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) GetBalance(ctx context.Context, address string) (uint64, error) {
	args := m.Called(ctx, address)

	var res uint64
	if a := args.Get(0); a != nil {
		res = a.(uint64)
	}
	return res, args.Error(1)
}

func (m *mockLedger) PrepareTransfer(
	ctx context.Context, transfers []ports.Transfer, opts ports.TransferOptions,
	signer ports.Signer,
) (ports.SignedBundle, error) {
	args := m.Called(ctx, transfers, opts, signer)

	var res ports.SignedBundle
	if a := args.Get(0); a != nil {
		res = a.(ports.SignedBundle)
	}
	return res, args.Error(1)
}

func (m *mockLedger) Submit(
	ctx context.Context, bundle ports.SignedBundle, depth, minWeightMagnitude int,
) ([]ports.Transaction, error) {
	args := m.Called(ctx, bundle, depth, minWeightMagnitude)

	var res []ports.Transaction
	if a := args.Get(0); a != nil {
		res = a.([]ports.Transaction)
	}
	return res, args.Error(1)
}

func (m *mockLedger) GetConfirmationStatus(
	ctx context.Context, hashes []string,
) ([]bool, error) {
	args := m.Called(ctx, hashes)

	var res []bool
	if a := args.Get(0); a != nil {
		res = a.([]bool)
	}
	return res, args.Error(1)
}

// **** Faucet ****

type mockFaucet struct {
	mock.Mock
}

func (m *mockFaucet) RequestFunds(
	ctx context.Context, address string, amount uint64,
) (bool, error) {
	args := m.Called(ctx, address, amount)
	return args.Bool(0), args.Error(1)
}

// **** Keys ****

// keyService derives addresses as "<seed>-<index>", hands out sequential
// seeds and signs with "<seed>-<index>:<digest>".
type keyService struct {
	mu     sync.Mutex
	seeds  int
	signed []string
}

func (k *keyService) NewSeed() (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seeds++
	return fmt.Sprintf("newseed%d", k.seeds), nil
}

func (k *keyService) DeriveAddress(seed string, index uint32, _ int) (string, error) {
	return fmt.Sprintf("%s-%d", seed, index), nil
}

func (k *keyService) Sign(seed string, index uint32, _ int, digest []byte) ([]byte, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	sig := fmt.Sprintf("%s-%d:%x", seed, index, digest)
	k.signed = append(k.signed, sig)
	return []byte(sig), nil
}

func (k *keyService) Signed() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string{}, k.signed...)
}

// **** Scheduler ****

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Start() {
	m.Called()
}

func (m *mockScheduler) Stop() {
	m.Called()
}

func (m *mockScheduler) ScheduleSettlements(every time.Duration, settleFunc func()) error {
	args := m.Called(every, settleFunc)
	return args.Error(0)
}

func (m *mockScheduler) WhenNextSettlement() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}

// **** Repositories ****

// walletStore wraps a real wallet repository and records every write.
type walletStore struct {
	domain.WalletRepository

	mu       sync.Mutex
	saved    []domain.Wallet
	failSave func(domain.Wallet) error
}

func (s *walletStore) SaveWallet(ctx context.Context, wallet domain.Wallet) error {
	if s.failSave != nil {
		if err := s.failSave(wallet); err != nil {
			return err
		}
	}
	if err := s.WalletRepository.SaveWallet(ctx, wallet); err != nil {
		return err
	}
	s.mu.Lock()
	s.saved = append(s.saved, wallet)
	s.mu.Unlock()
	return nil
}

func (s *walletStore) Saved() []domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Wallet{}, s.saved...)
}

type repoManager struct {
	wallets  *walletStore
	payments domain.PaymentRepository
	closeFn  func()
}

func (r *repoManager) Wallet() domain.WalletRepository {
	return r.wallets
}

func (r *repoManager) Payments() domain.PaymentRepository {
	return r.payments
}

func (r *repoManager) Close() {
	r.closeFn()
}
