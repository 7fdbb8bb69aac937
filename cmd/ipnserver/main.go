package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/berniyo/payson-lambda/internal/app"
	"github.com/berniyo/payson-lambda/internal/config"
	"github.com/berniyo/payson-lambda/internal/lib/sl"
)

func main() {
	cfg := config.MustLoad()
	logger := sl.New(cfg.Env)

	logger.Info("starting ipnserver", slog.String("env", cfg.Env))
	logger.Debug("configuration", slog.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	client, err := app.NewClient(cfg, logger, reg)
	if err != nil {
		logger.Error("failed to configure payson client", sl.Err(err))
		os.Exit(1)
	}

	processor, err := app.NewProcessor(cfg, client, logger, reg)
	if err != nil {
		logger.Error("failed to configure processor", sl.Err(err))
		os.Exit(1)
	}

	if err := app.NewServer(cfg, logger, processor, reg).Run(ctx); err != nil {
		logger.Error("server stopped with error", sl.Err(err))
		os.Exit(1)
	}

	logger.Info("ipnserver stopped gracefully")
}
