package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"tripload/src/config"
	"tripload/src/logging"
	"tripload/src/storage"
)

const configFile = "config.yaml"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	confDir := config.Dir()

	// The logger depends on the config, so a config error is only reported
	// once a default logger exists.
	cfg, cfgFound, cfgErr := config.LoadOptional(filepath.Join(confDir, configFile))

	loggingCfg := config.Default().Logging
	if cfgErr == nil {
		loggingCfg = cfg.Logging
	}

	logger, closeLogger, err := logging.New(loggingCfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)

		return 1
	}

	defer closeLogger()

	logger.Info("Starting working with project using Minio.",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("built", date),
	)

	if cfgErr != nil {
		logger.Error(fmt.Sprintf("Error loading config: %v", cfgErr))

		return 1
	}

	if cfgFound {
		logger.Debug("loaded config file", zap.String("dir", confDir))
	}

	creds, envFound, err := config.LoadCredentials(filepath.Join(confDir, config.EnvFile))
	if err != nil {
		logger.Warn(err.Error())
	} else if !envFound {
		logger.Debug("env file not found, using process environment", zap.String("dir", confDir))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(ctx, cfg.Storage, creds)
	if err != nil {
		logger.Error(err.Error())

		return 1
	}

	runner := NewRunner(cfg, storage.NewHTTPSource(cfg.Settings.Timeout), store, logger)

	results, err := runner.Run(ctx)
	if err != nil {
		logger.Error(err.Error())

		return 1
	}

	logger.Debug("transfers finished",
		zap.Int("total", len(results)),
		zap.Int("failed", countFailed(results)),
	)

	return 0
}

func countFailed(results []TransferResult) int {
	var failed int

	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}

	return failed
}
