package application

import (
	"context"
	"fmt"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/ArkLabsHQ/settler/internal/metrics"
	log "github.com/sirupsen/logrus"
)

type balanceGateway struct {
	ledger ports.LedgerClient
	log    log.FieldLogger
}

func newBalanceGateway(ledger ports.LedgerClient, logger log.FieldLogger) *balanceGateway {
	return &balanceGateway{ledger, logger}
}

// GetBalance never fails: a lookup error is reported as a zero balance so
// that callers err on the side of not spending. Use LookupBalance when a
// failed lookup must be told apart from an empty address.
func (g *balanceGateway) GetBalance(ctx context.Context, address string) uint64 {
	balance, err := g.LookupBalance(ctx, address)
	if err != nil {
		g.log.WithError(err).WithField("address", address).Warn("balance lookup failed, assuming 0")
		return 0
	}
	return balance
}

func (g *balanceGateway) LookupBalance(ctx context.Context, address string) (uint64, error) {
	if len(address) <= 0 {
		return 0, nil
	}
	balance, err := g.ledger.GetBalance(ctx, address)
	if err != nil {
		metrics.BalanceLookupFailures.Inc()
		return 0, fmt.Errorf("%w: %s", ErrBalanceUnavailable, err)
	}
	return balance, nil
}
