package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ArkLabsHQ/settler/internal/config"
	"github.com/ArkLabsHQ/settler/internal/core/application"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/db"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/faucet"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/keychain"
	"github.com/ArkLabsHQ/settler/internal/infrastructure/ledger"
	scheduler "github.com/ArkLabsHQ/settler/internal/infrastructure/scheduler/gocron"
	metricsinterface "github.com/ArkLabsHQ/settler/internal/interface/metrics"
	"github.com/ArkLabsHQ/settler/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	log.Info("starting settler...")
	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	dbConfig := []any{cfg.Datadir, log.StandardLogger()}
	if cfg.DbType == "sqlite" {
		dbConfig = []any{cfg.Datadir}
	}
	dbSvc, err := db.NewService(db.ServiceConfig{
		DbType:   cfg.DbType,
		DbConfig: dbConfig,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}

	ledgerSvc, err := ledger.NewService(
		cfg.LedgerURLs, cfg.LedgerRateLimit, log.WithField("component", "ledger"),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to init ledger client")
	}
	faucetSvc, err := faucet.NewService(cfg.FaucetURL, log.WithField("component", "faucet"))
	if err != nil {
		log.WithError(err).Fatal("failed to init faucet client")
	}

	buildInfo := application.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	appSvc, err := application.NewService(
		buildInfo, cfg.AppConfig(), dbSvc, ledgerSvc, faucetSvc,
		keychain.NewService(), scheduler.NewScheduler(),
	)
	if err != nil {
		log.WithError(err).Fatal(err)
	}

	log.RegisterExitHandler(appSvc.Stop)
	log.RegisterExitHandler(dbSvc.Close)

	if cfg.BootstrapWallet {
		wallet, err := appSvc.Bootstrap(context.Background())
		if err != nil {
			log.WithError(err).Fatal("failed to bootstrap wallet")
		}
		log.WithField("address", wallet.Address).Info("wallet ready")
	}

	if cfg.MetricsPort > 0 {
		metricsSvc, err := metricsinterface.NewService(metricsinterface.Config{
			Port: cfg.MetricsPort,
		}, log.WithField("component", "metrics"))
		if err != nil {
			log.WithError(err).Fatal(err)
		}
		if err := metricsSvc.Start(); err != nil {
			log.WithError(err).Fatal(err)
		}
		log.RegisterExitHandler(metricsSvc.Stop)
	}

	log.Info("starting service...")
	if err := appSvc.Start(cfg.SettlementInterval); err != nil {
		log.Fatal(err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
}
