// Package cli provides common initialization used by cmd/pinledger and
// cmd/pinledger-notifier.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"pinledger/internal/amqp"
	"pinledger/internal/backend"
	"pinledger/internal/config"
	"pinledger/internal/core"
	"pinledger/internal/log"
	"pinledger/internal/places"
)

// SetupLogger builds the process logger for component at the LOG_LEVEL
// level and installs it as the slog default. A nil out means stdout.
func SetupLogger(component, level string, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stdout
	}
	logger := log.New(log.Config{
		Level:     log.ParseLevel(level),
		Component: component,
		Output:    out,
	})
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitBackend opens the store selected by DATA_BACKEND; the caller owns the
// handle and must Close it.
func InitBackend(logger *log.Logger, cfg *config.Config) (backend.Backend, error) {
	b, err := backend.New(backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		SQLiteDBPath: cfg.SQLiteDBPath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err,
			"backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
		return nil, err
	}
	logger.Info("Initialized backend", "backend", cfg.DataBackend)
	return b, nil
}

// LoadPlaces returns the configured points of interest.
func LoadPlaces(logger *log.Logger, cfg *config.Config) ([]core.PointOfInterest, error) {
	pois, err := places.Load(cfg.PlacesFile)
	if err != nil {
		return nil, fmt.Errorf("load places: %w", err)
	}
	logger.Info("Points of interest loaded", "count", len(pois), "file", cfg.PlacesFile)
	return pois, nil
}

// ConnectAMQP dials the broker when AMQP_URL is set. It returns a nil client
// when messaging is disabled.
func ConnectAMQP(logger *log.Logger, cfg *config.Config) (*amqp.Client, error) {
	if !cfg.AMQPEnabled() {
		logger.Info("AMQP disabled - no AMQP_URL provided")
		return nil, nil
	}
	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange,
		cfg.AMQPNotifyQueue, cfg.AMQPLocationQueue, cfg.AMQPEventsQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		return nil, err
	}
	logger.Info("AMQP connected", "exchange", cfg.AMQPExchange)
	return client.WithLogger(logger), nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
