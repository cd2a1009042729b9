package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/core/ports"
	badgerdb "github.com/ArkLabsHQ/settler/internal/infrastructure/db/badger"
	sqlitedb "github.com/ArkLabsHQ/settler/internal/infrastructure/db/sqlite"
	"github.com/dgraph-io/badger/v4"
)

const sqliteDbFile = "settler.db"

var (
	allowedTypes = strings.Join([]string{"badger", "sqlite"}, ",")
)

type ServiceConfig struct {
	DbType   string
	DbConfig []any
}

type service struct {
	walletRepo  domain.WalletRepository
	paymentRepo domain.PaymentRepository
	sqlDb       *sql.DB
}

// NewService opens the wallet store and the payment queue.
// For badger, DbConfig is [baseDir string, logger badger.Logger], an empty
// baseDir meaning in-memory. For sqlite it is [baseDir string], an empty
// baseDir meaning in-memory as well.
func NewService(config ServiceConfig) (ports.RepoManager, error) {
	var (
		walletRepo  domain.WalletRepository
		paymentRepo domain.PaymentRepository
		sqlDb       *sql.DB
		err         error
	)
	switch config.DbType {
	case "badger":
		if len(config.DbConfig) != 2 {
			return nil, fmt.Errorf("badger db config must have 2 elements, got %d", len(config.DbConfig))
		}
		baseDir, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}
		var logger badger.Logger
		if config.DbConfig[1] != nil {
			logger, ok = config.DbConfig[1].(badger.Logger)
			if !ok {
				return nil, fmt.Errorf("invalid logger")
			}
		}
		walletRepo, err = badgerdb.NewWalletRepository(baseDir, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open wallet db: %s", err)
		}
		paymentRepo, err = badgerdb.NewPaymentRepository(baseDir, logger)
		if err != nil {
			walletRepo.Close()
			return nil, fmt.Errorf("failed to open payment queue db: %s", err)
		}
	case "sqlite":
		if len(config.DbConfig) != 1 {
			return nil, fmt.Errorf("sqlite db config must have 1 element, got %d", len(config.DbConfig))
		}
		baseDir, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}
		dbPath := ":memory:"
		if len(baseDir) > 0 {
			dbPath = filepath.Join(baseDir, sqliteDbFile)
		}
		sqlDb, err = sqlitedb.OpenDb(dbPath)
		if err != nil {
			return nil, err
		}
		if walletRepo, err = sqlitedb.NewWalletRepository(sqlDb); err != nil {
			return nil, err
		}
		if paymentRepo, err = sqlitedb.NewPaymentRepository(sqlDb); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported db type %s, please select one of %s", config.DbType, allowedTypes)
	}

	return &service{
		walletRepo:  walletRepo,
		paymentRepo: paymentRepo,
		sqlDb:       sqlDb,
	}, nil
}

func (s *service) Wallet() domain.WalletRepository {
	return s.walletRepo
}

func (s *service) Payments() domain.PaymentRepository {
	return s.paymentRepo
}

func (s *service) Close() {
	s.walletRepo.Close()
	s.paymentRepo.Close()
	if s.sqlDb != nil {
		// nolint:all
		s.sqlDb.Close()
	}
}
