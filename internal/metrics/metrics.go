package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "settler_build_info",
		Help: "Build information of the settlement daemon.",
	}, []string{"version", "commit", "date"})

	SettlementCycles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_settlement_cycles_total", Help: "Settlement cycles by outcome.",
	}, []string{"outcome"})
	SettlementErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_settlement_errors_total", Help: "Failed settlement cycles by error kind.",
	}, []string{"kind"})

	FundingRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "settler_funding_requests_total", Help: "Faucet funding requests by result.",
	}, []string{"result"})

	BalanceLookupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_balance_lookup_failures_total", Help: "Ledger balance queries that failed.",
	})

	TransfersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_transfers_submitted_total", Help: "Transfers submitted to the ledger.",
	})
	PaymentsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_payments_settled_total", Help: "Payment queue entries included in submitted transfers.",
	})
	ConfirmationTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "settler_confirmation_timeouts_total", Help: "Transfers whose confirmation polling ran out of attempts.",
	})
	ConfirmationPollAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "settler_confirmation_poll_attempts",
		Help:    "Number of status queries needed per transfer.",
		Buckets: prometheus.LinearBuckets(1, 5, 10),
	})

	WalletKeyIndex = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_wallet_key_index", Help: "Derivation index of the active wallet address.",
	})
	WalletBalance = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "settler_wallet_balance", Help: "Last persisted balance of the active wallet.",
	})
)
