package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/lberes/taskdock/internal/adapters/clisummary"
	"github.com/lberes/taskdock/internal/adapters/docker"
	"github.com/lberes/taskdock/internal/adapters/fsstore"
	appcmd "github.com/lberes/taskdock/internal/cmd"
	appconfig "github.com/lberes/taskdock/internal/config"
	"github.com/lberes/taskdock/internal/core/services"
)

func main() {
	_ = godotenv.Load()

	cfg, err := appconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.AppEnv)

	if err := run(logger, cfg); err != nil {
		logger.Error().Err(err).Msg("taskdock failed")
		os.Exit(1)
	}
}

func newLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	if appEnv == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger
}

func run(logger zerolog.Logger, cfg *appconfig.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		logger.Info().Msg("shutting down")
		cancel()
	}()

	store, err := fsstore.New(cfg.JobsDir, logger)
	if err != nil {
		return fmt.Errorf("init job store: %w", err)
	}

	runtime, err := docker.NewRuntime()
	if err != nil {
		return fmt.Errorf("init docker runtime: %w", err)
	}

	summarizer := clisummary.New(cfg.SummaryCommand, cfg.SummaryPrintFlag, cfg.SummaryTimeout)

	manager := services.NewManager(logger, store, runtime, summarizer, services.Config{
		CostDataDir:        cfg.CostDataDir,
		InspectTimeout:     cfg.InspectTimeout,
		StopTimeout:        cfg.StopTimeout,
		RemoveTimeout:      cfg.RemoveTimeout,
		RemoveImageTimeout: cfg.RemoveImageTimeout,
		LogsTimeout:        cfg.LogsTimeout,
		SummaryTimeout:     cfg.SummaryTimeout,
	})

	supervisor := services.NewSupervisor(logger, manager, cfg.PollInterval, cfg.PrimeDelay)

	root := appcmd.NewRoot(appcmd.Deps{
		Log:        logger,
		Cfg:        cfg,
		Manager:    manager,
		Supervisor: supervisor,
	})
	return root.ExecuteContext(ctx)
}
