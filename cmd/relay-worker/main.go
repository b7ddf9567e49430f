package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"leadrelay/internal/application/dto"
	"leadrelay/internal/infrastructure/config"
	"leadrelay/internal/infrastructure/di"

	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)
	_ = godotenv.Load()

	cfg, cfgErr := config.LoadConfig()
	if cfgErr != nil {
		logger.Printf("startup config error code=%s message=%s metadata=%v", cfgErr.Code, cfgErr.Message, cfgErr.Metadata)
		os.Exit(1)
	}
	if workerCfgErr := validateRelayWorkerConfig(cfg); workerCfgErr != nil {
		logger.Printf(
			"relay worker config error code=%s message=%s metadata=%v",
			workerCfgErr.Code,
			workerCfgErr.Message,
			workerCfgErr.Metadata,
		)
		os.Exit(1)
	}

	container, buildErr := di.BuildRelayWorker(cfg, logger)
	if buildErr != nil {
		logger.Printf("dependency wiring error: %v", buildErr)
		os.Exit(1)
	}
	defer func() {
		if container.Database == nil {
			return
		}
		if err := container.Database.Close(); err != nil {
			logger.Printf("database close warning error=%v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Printf("relay worker persistence initialization starting database_target=%s", cfg.DatabaseTarget)
	persistenceErr := container.InitializePersistenceUseCase.Execute(ctx, dto.InitializePersistenceCommand{
		ReadinessTimeout:       cfg.DBReadinessTimeout,
		ReadinessRetryInterval: cfg.DBReadinessRetryInterval,
	})
	if persistenceErr != nil {
		logger.Printf(
			"relay worker persistence initialization failed code=%s message=%s metadata=%v",
			persistenceErr.Code,
			persistenceErr.Message,
			persistenceErr.Details,
		)
		os.Exit(1)
	}
	logger.Printf("relay worker persistence initialization completed database_target=%s", cfg.DatabaseTarget)

	if container.RelayWorker == nil || !container.RelayWorker.Enabled() {
		logger.Printf("relay worker startup failed code=RELAY_WORKER_NOT_ENABLED message=relay worker is not enabled")
		os.Exit(1)
	}

	go container.RelayWorker.Start(ctx)
	<-ctx.Done()
	logger.Printf("relay worker stopped")
}

func validateRelayWorkerConfig(cfg config.Config) *config.ConfigError {
	if !cfg.RelayWorkerEnabled {
		return &config.ConfigError{
			Code:    "CONFIG_RELAY_WORKER_DISABLED",
			Message: "RELAY_WORKER_ENABLED must be true for relay worker runtime",
		}
	}

	if strings.TrimSpace(cfg.RelayWorkerID) == "" {
		return &config.ConfigError{
			Code:    "CONFIG_RELAY_WORKER_ID_REQUIRED",
			Message: "RELAY_WORKER_ID is required when relay worker runtime is enabled",
		}
	}

	return nil
}
