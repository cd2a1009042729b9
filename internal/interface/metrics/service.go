package metrics_interface

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Port uint32
}

func (c Config) Validate() error {
	if c.Port == 0 {
		return fmt.Errorf("missing port")
	}
	lis, err := net.Listen("tcp", c.address())
	if err != nil {
		return fmt.Errorf("invalid metrics port: %s", err)
	}
	// nolint:all
	lis.Close()
	return nil
}

func (c Config) address() string {
	return fmt.Sprintf(":%d", c.Port)
}

type service struct {
	cfg    Config
	server *http.Server
	log    log.FieldLogger
}

// NewService returns the server exposing the prometheus collectors at
// /metrics.
func NewService(cfg Config, logger log.FieldLogger) (*service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %s", err)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              cfg.address(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return &service{cfg, server, logger}, nil
}

func (s *service) Start() error {
	lis, err := net.Listen("tcp", s.cfg.address())
	if err != nil {
		return err
	}
	go func() {
		if err := s.server.Serve(lis); err != nil && err != http.ErrServerClosed {
			s.log.WithError(err).Warn("metrics server stopped")
		}
	}()
	s.log.Infof("metrics server listening at %s", s.cfg.address())
	return nil
}

func (s *service) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// nolint:all
	s.server.Shutdown(ctx)
	s.log.Info("stopped metrics server")
}
