package faucet

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ArkLabsHQ/settler/internal/core/ports"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	defaultTimeout    = 10 * time.Second
	defaultRetryDelay = time.Second
	defaultMaxRetries = 2
)

type response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type service struct {
	url        *url.URL
	client     *http.Client
	retryDelay time.Duration
	maxRetries uint64
	log        log.FieldLogger
}

// NewService returns a faucet client for the given endpoint. Transport
// errors and 5xx responses are retried a couple of times before giving up,
// an explicit refusal is not retried.
func NewService(faucetUrl string, logger log.FieldLogger) (ports.Faucet, error) {
	return newService(faucetUrl, defaultRetryDelay, defaultMaxRetries, logger)
}

func newService(
	faucetUrl string, retryDelay time.Duration, maxRetries uint64, logger log.FieldLogger,
) (*service, error) {
	u, err := url.ParseRequestURI(faucetUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid faucet url: %s", err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &service{
		url:        u,
		client:     &http.Client{Timeout: defaultTimeout},
		retryDelay: retryDelay,
		maxRetries: maxRetries,
		log:        logger,
	}, nil
}

func (s *service) RequestFunds(
	ctx context.Context, address string, amount uint64,
) (bool, error) {
	var resp *response
	op := func() error {
		r, err := s.get(ctx, address, amount)
		if err != nil {
			s.log.WithError(err).WithField("address", address).Debug("faucet request failed")
			return err
		}
		resp = r
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), s.maxRetries), ctx,
	)
	if err := backoff.Retry(op, b); err != nil {
		return false, err
	}
	if !resp.Success && len(resp.Error) > 0 {
		s.log.WithField("address", address).Debugf("faucet refused: %s", resp.Error)
	}
	return resp.Success, nil
}

func (s *service) get(ctx context.Context, address string, amount uint64) (*response, error) {
	u := *s.url
	q := u.Query()
	q.Set("address", address)
	q.Set("amount", strconv.FormatUint(amount, 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("faucet request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if res.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, backoff.Permanent(
			fmt.Errorf("could not parse faucet response with status %d: %v", res.StatusCode, err),
		)
	}
	return &resp, nil
}
