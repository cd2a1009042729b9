package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

const (
	apiVersionHeader = "X-IOTA-API-Version"
	apiVersion       = "1"
	// IRI only counts confirmed balances at 100% threshold.
	balanceThreshold = 100
	defaultTimeout   = 30 * time.Second
	maxBodySize      = 4 << 20
)

var (
	// MaxNumOfFailingRequests is the number of requests a node must have
	// served before its breaker may trip.
	MaxNumOfFailingRequests = 10
	// FailingRatio is the share of failed requests that trips a breaker.
	FailingRatio = 0.6
)

type node struct {
	url string
	cb  *gobreaker.CircuitBreaker
}

type service struct {
	nodes   []*node
	current atomic.Int32
	client  *http.Client
	limiter ratelimit.Limiter
	log     log.FieldLogger
}

// NewService returns a ledger client talking to the JSON command API of
// the given nodes. Commands go to the last node that answered and fail
// over to the next ones when it is unreachable or its breaker is open.
// Requests are paced to at most rateLimit per second, zero meaning
// unlimited.
func NewService(
	urls []string, rateLimit int, logger log.FieldLogger,
) (ports.LedgerClient, error) {
	if len(urls) <= 0 {
		return nil, fmt.Errorf("missing ledger url")
	}
	if rateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	nodes := make([]*node, 0, len(urls))
	for _, u := range urls {
		if len(u) <= 0 {
			return nil, fmt.Errorf("missing ledger url")
		}
		u = strings.TrimRight(u, "/")
		nodes = append(nodes, &node{u, newCircuitBreaker(u)})
	}

	limiter := ratelimit.NewUnlimited()
	if rateLimit > 0 {
		limiter = ratelimit.New(rateLimit, ratelimit.WithoutSlack)
	}

	return &service{
		nodes:   nodes,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: limiter,
		log:     logger,
	}, nil
}

func (s *service) GetBalance(ctx context.Context, address string) (uint64, error) {
	resp, err := sendCommand[getBalancesResponse](ctx, s, getBalancesRequest{
		Command:   "getBalances",
		Addresses: []string{address},
		Threshold: balanceThreshold,
	})
	if err != nil {
		return 0, err
	}
	if len(resp.Balances) <= 0 {
		return 0, nil
	}
	balance, err := strconv.ParseUint(resp.Balances[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %q: %s", resp.Balances[0], err)
	}
	return balance, nil
}

func (s *service) PrepareTransfer(
	_ context.Context, transfers []ports.Transfer, opts ports.TransferOptions,
	signer ports.Signer,
) (ports.SignedBundle, error) {
	entries, err := composeBundle(transfers, opts)
	if err != nil {
		return nil, err
	}
	return signBundle(entries, opts.Inputs, signer)
}

func (s *service) Submit(
	ctx context.Context, bundle ports.SignedBundle, depth, minWeightMagnitude int,
) ([]ports.Transaction, error) {
	resp, err := sendCommand[sendTrytesResponse](ctx, s, sendTrytesRequest{
		Command:            "sendTrytes",
		Trytes:             bundle,
		Depth:              depth,
		MinWeightMagnitude: minWeightMagnitude,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Transactions) <= 0 {
		return nil, fmt.Errorf("node returned no transactions")
	}

	txs := make([]ports.Transaction, 0, len(resp.Transactions))
	for _, tx := range resp.Transactions {
		txs = append(txs, ports.Transaction{
			Hash: tx.Hash, Address: tx.Address, Value: tx.Value,
		})
	}
	return txs, nil
}

func (s *service) GetConfirmationStatus(
	ctx context.Context, hashes []string,
) ([]bool, error) {
	resp, err := sendCommand[getInclusionStatesResponse](ctx, s, getInclusionStatesRequest{
		Command:      "getInclusionStates",
		Transactions: hashes,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.States) != len(hashes) {
		return nil, fmt.Errorf(
			"expected %d inclusion states, got %d", len(hashes), len(resp.States),
		)
	}
	return resp.States, nil
}

func sendCommand[T any](ctx context.Context, s *service, command interface{}) (*T, error) {
	start := int(s.current.Load())

	var lastErr error
	for i := 0; i < len(s.nodes); i++ {
		idx := (start + i) % len(s.nodes)
		n := s.nodes[idx]

		res, err := n.cb.Execute(func() (interface{}, error) {
			s.limiter.Take()
			return s.post(ctx, n.url, command)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			s.log.WithError(err).WithField("node", n.url).Debug("ledger node unavailable")
			lastErr = err
			continue
		}

		if idx != start && s.current.CompareAndSwap(int32(start), int32(idx)) {
			s.log.WithField("node", n.url).Info("switched ledger node")
		}
		return decodeResponse[T](res.(postResult))
	}

	if len(s.nodes) == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("all ledger nodes failed, last error: %w", lastErr)
}

func decodeResponse[T any](res postResult) (*T, error) {
	var resp T
	if err := json.Unmarshal(res.body, &resp); err != nil {
		return nil, fmt.Errorf("could not parse node response with status %d: %v", res.status, err)
	}
	if r, ok := any(resp).(errorResponse); ok && len(r.errorMessage()) > 0 {
		return nil, fmt.Errorf("%s", r.errorMessage())
	}
	if res.status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.status)
	}
	return &resp, nil
}

type postResult struct {
	status int
	body   []byte
}

func (s *service) post(ctx context.Context, url string, command interface{}) (postResult, error) {
	rawBody, err := json.Marshal(command)
	if err != nil {
		return postResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(rawBody))
	if err != nil {
		return postResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiVersionHeader, apiVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return postResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return postResult{}, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return postResult{}, fmt.Errorf(
			"unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)),
		)
	}
	return postResult{resp.StatusCode, body}, nil
}

// newCircuitBreaker trips once more than MaxNumOfFailingRequests requests
// were made and at least FailingRatio of them failed.
func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > MaxNumOfFailingRequests && ratio >= FailingRatio
		},
	})
}
