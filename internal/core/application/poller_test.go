package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const pollInterval = 5 * time.Second

type statusLedger struct {
	ports.LedgerClient

	mu       sync.Mutex
	calls    int
	statuses func(call int) []bool
}

func (l *statusLedger) GetConfirmationStatus(
	_ context.Context, _ []string,
) ([]bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.statuses(l.calls), nil
}

func (l *statusLedger) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func TestConfirmationPoller(t *testing.T) {
	t.Run("confirmed", func(t *testing.T) {
		ledger := &statusLedger{statuses: func(call int) []bool {
			if call < 2 {
				return []bool{true, false}
			}
			return []bool{true, true}
		}}
		clock := clockwork.NewFakeClock()
		poller := &confirmationPoller{ledger, clock, log.StandardLogger()}
		poll := &ConfirmationPoll{
			Hashes: []string{"h1", "h2"}, MaxAttempts: 40, Interval: pollInterval,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- poller.Poll(context.Background(), poll) }()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		clock.Advance(pollInterval)

		require.NoError(t, <-errCh)
		require.Equal(t, 2, poll.Attempt)
		require.Equal(t, 2, ledger.Calls())
	})

	t.Run("max attempts", func(t *testing.T) {
		ledger := &statusLedger{statuses: func(int) []bool {
			return []bool{true, true, false, true}
		}}
		clock := clockwork.NewFakeClock()
		poller := &confirmationPoller{ledger, clock, log.StandardLogger()}
		poll := &ConfirmationPoll{
			Hashes:      []string{"h1", "h2", "h3", "h4"},
			MaxAttempts: 3,
			Interval:    pollInterval,
		}

		errCh := make(chan error, 1)
		go func() { errCh <- poller.Poll(context.Background(), poll) }()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for i := 1; i < poll.MaxAttempts; i++ {
			require.NoError(t, clock.BlockUntilContext(ctx, 1))
			clock.Advance(pollInterval)
		}

		require.ErrorIs(t, <-errCh, ErrConfirmationTimeout)
		require.Equal(t, 3, poll.Attempt)
		require.Equal(t, 3, ledger.Calls())
	})

	t.Run("missing statuses", func(t *testing.T) {
		ledger := &statusLedger{statuses: func(int) []bool {
			return []bool{true}
		}}
		poller := &confirmationPoller{ledger, clockwork.NewFakeClock(), log.StandardLogger()}
		poll := &ConfirmationPoll{
			Hashes: []string{"h1", "h2"}, MaxAttempts: 1, Interval: pollInterval,
		}

		err := poller.Poll(context.Background(), poll)
		require.ErrorIs(t, err, ErrConfirmationTimeout)
		require.Equal(t, 1, ledger.Calls())
	})

	t.Run("no hashes", func(t *testing.T) {
		ledger := &statusLedger{statuses: func(int) []bool { return nil }}
		poller := &confirmationPoller{ledger, clockwork.NewFakeClock(), log.StandardLogger()}
		poll := &ConfirmationPoll{MaxAttempts: 3, Interval: pollInterval}

		require.NoError(t, poller.Poll(context.Background(), poll))
		require.Zero(t, ledger.Calls())
	})

	t.Run("canceled", func(t *testing.T) {
		ledger := &statusLedger{statuses: func(int) []bool {
			return []bool{false}
		}}
		clock := clockwork.NewFakeClock()
		poller := &confirmationPoller{ledger, clock, log.StandardLogger()}
		poll := &ConfirmationPoll{
			Hashes: []string{"h1"}, MaxAttempts: 40, Interval: pollInterval,
		}

		pollCtx, cancelPoll := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- poller.Poll(pollCtx, poll) }()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, clock.BlockUntilContext(ctx, 1))
		cancelPoll()

		require.ErrorIs(t, <-errCh, context.Canceled)
		require.Equal(t, 1, ledger.Calls())
	})
}
