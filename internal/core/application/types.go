package application

import (
	"fmt"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/domain"
	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

const (
	defaultDepth              = 3
	defaultMinWeightMagnitude = 9
	defaultSecurity           = 2
	defaultPollInterval       = 5 * time.Second
	defaultPollMaxAttempts    = 40
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Config holds the immutable settlement parameters the engine is built with.
type Config struct {
	Depth              int
	MinWeightMagnitude int
	Security           int
	FaucetAmount       uint64

	PollInterval    time.Duration
	PollMaxAttempts int
	// PollTimeout bounds the whole confirmation polling. Zero means only
	// PollMaxAttempts applies.
	PollTimeout time.Duration

	Clock  clockwork.Clock
	Logger log.FieldLogger
}

// DefaultConfig returns the parameters the settlement engine historically
// ran with.
func DefaultConfig() Config {
	return Config{
		Depth:              defaultDepth,
		MinWeightMagnitude: defaultMinWeightMagnitude,
		Security:           defaultSecurity,
		PollInterval:       defaultPollInterval,
		PollMaxAttempts:    defaultPollMaxAttempts,
	}
}

func (c Config) Validate() error {
	if c.Depth <= 0 {
		return fmt.Errorf("depth must be greater than 0")
	}
	if c.MinWeightMagnitude <= 0 {
		return fmt.Errorf("min weight magnitude must be greater than 0")
	}
	if c.Security < 1 || c.Security > 3 {
		return fmt.Errorf("security must be in range [1, 3]")
	}
	if c.FaucetAmount == 0 {
		return fmt.Errorf("faucet amount must be greater than 0")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be greater than 0")
	}
	if c.PollMaxAttempts <= 0 {
		return fmt.Errorf("poll max attempts must be greater than 0")
	}
	if c.PollTimeout < 0 {
		return fmt.Errorf("poll timeout must not be negative")
	}
	return nil
}

func (c Config) clock() clockwork.Clock {
	if c.Clock == nil {
		return clockwork.NewRealClock()
	}
	return c.Clock
}

func (c Config) logger(component string) log.FieldLogger {
	logger := c.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	return logger.WithField("component", component)
}

type Outcome string

const (
	OutcomeNoWallet    Outcome = "no_wallet"
	OutcomeFunded      Outcome = "funded"
	OutcomeIdle        Outcome = "idle"
	OutcomeTransferred Outcome = "transferred"
	OutcomeFailed      Outcome = "failed"
)

// SettlementReport describes what a single settlement cycle did.
type SettlementReport struct {
	Outcome Outcome
	// Wallet is the seedless view of the wallet persisted at the end of the
	// cycle, nil when nothing was persisted.
	Wallet   *domain.Wallet
	Transfer *TransferResult
}

type TransferResult struct {
	BatchId      string
	TotalAmount  uint64
	Payments     int
	Transactions []ports.Transaction
	// Confirmed reports whether every submitted entry was seen confirmed
	// before polling stopped.
	Confirmed bool
	// Reconciled reports whether the ledger balance at the remainder address
	// was persisted after polling.
	Reconciled bool
	Wallet     domain.Wallet
}

func (r *TransferResult) Hashes() []string {
	hashes := make([]string, 0, len(r.Transactions))
	for _, tx := range r.Transactions {
		hashes = append(hashes, tx.Hash)
	}
	return hashes
}
