package application

import (
	"context"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
)

// ConfirmationPoll tracks the status queries made for one submitted
// transfer. It lives only as long as the poll itself.
type ConfirmationPoll struct {
	Hashes      []string
	Attempt     int
	MaxAttempts int
	Interval    time.Duration
}

type confirmationPoller struct {
	ledger ports.LedgerClient
	clock  clockwork.Clock
	log    log.FieldLogger
}

// Poll queries the confirmation status of every hash until all of them are
// confirmed. It makes at most MaxAttempts queries, waiting Interval between
// two of them, and returns ErrConfirmationTimeout when they run out.
func (p *confirmationPoller) Poll(ctx context.Context, poll *ConfirmationPoll) error {
	if len(poll.Hashes) <= 0 {
		return nil
	}

	for poll.Attempt < poll.MaxAttempts {
		poll.Attempt++

		statuses, err := p.ledger.GetConfirmationStatus(ctx, poll.Hashes)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.WithError(err).WithField("attempt", poll.Attempt).
				Debug("failed to get confirmation status")
		} else if confirmed := countConfirmed(statuses); confirmed >= len(poll.Hashes) &&
			len(statuses) == len(poll.Hashes) {
			return nil
		} else {
			p.log.WithFields(log.Fields{
				"attempt":   poll.Attempt,
				"confirmed": confirmed,
				"expected":  len(poll.Hashes),
			}).Debug("transfer not confirmed yet")
		}

		if poll.Attempt >= poll.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(poll.Interval):
		}
	}

	return ErrConfirmationTimeout
}

func countConfirmed(statuses []bool) int {
	count := 0
	for _, ok := range statuses {
		if ok {
			count++
		}
	}
	return count
}
