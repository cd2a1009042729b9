package ports

import "github.com/ArkLabsHQ/settler/internal/core/domain"

type RepoManager interface {
	Wallet() domain.WalletRepository
	Payments() domain.PaymentRepository
	Close()
}
