// Package app wires configuration into the Payson client and the
// notification processor shared by the binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/berniyo/payson-lambda/internal/config"
	"github.com/berniyo/payson-lambda/internal/handler"
	"github.com/berniyo/payson-lambda/internal/payson"
)

const shutdownTimeout = 15 * time.Second

// NewClient builds a Payson client from cfg. Metrics are registered on reg
// when it is non-nil.
func NewClient(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*payson.Client, error) {
	opts, err := cfg.Payson.ClientOptions()
	if err != nil {
		return nil, fmt.Errorf("payson client options: %w", err)
	}
	opts = append(opts, payson.WithLogger(logger))
	if reg != nil {
		opts = append(opts, payson.WithMetrics(payson.NewMetrics(reg)))
	}

	client := payson.NewClient(cfg.Payson.Credentials(), opts...)
	logger.Info("payson client configured",
		slog.String("environment", client.Environment().Name),
		slog.String("agent_id", cfg.Payson.AgentID),
	)
	return client, nil
}

// NewProcessor builds the notification processor, forwarding to the
// configured callback when one is set.
func NewProcessor(cfg *config.Config, client handler.PaymentClient, logger *slog.Logger, reg prometheus.Registerer) (*handler.Processor, error) {
	opts := []handler.Option{handler.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, handler.WithMetrics(handler.NewMetrics(reg)))
	}

	if cfg.Callback.URL != "" {
		sender, err := handler.NewHTTPSCallbackSender(cfg.Callback.URL, cfg.Callback.Secret, nil)
		if err != nil {
			return nil, fmt.Errorf("callback sender: %w", err)
		}
		opts = append(opts, handler.WithCallbackSender(sender))
	} else {
		logger.Warn("CALLBACK_URL not set, verified notifications are only logged")
	}

	return handler.NewProcessor(client, opts...), nil
}

// Server is the standalone IPN listener.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer builds an HTTP server exposing the IPN router.
func NewServer(cfg *config.Config, logger *slog.Logger, p *handler.Processor, gatherer prometheus.Gatherer) *Server {
	return &Server{
		server: &http.Server{
			Addr:        cfg.HTTPServer.Address,
			Handler:     handler.NewRouter(logger, p, gatherer),
			ReadTimeout: cfg.HTTPServer.ReadTimeout,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", slog.String("address", s.server.Addr))
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down HTTP server gracefully")
		return s.server.Shutdown(timeoutCtx)
	}
}
