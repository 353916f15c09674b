package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/maxweight/internal/application"
	"github.com/eugenenazirov/maxweight/internal/config"
	"github.com/eugenenazirov/maxweight/internal/logging"
	"github.com/eugenenazirov/maxweight/internal/solver"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("maxweight-server", "Max Weight - picks the heaviest foods that fit a calorie budget")
	overrides := parseFlags(kingpinApp, os.Args[1:])

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(logging.WithLevel(cfg.LogLevel))
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	app, err := application.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer app.Close()

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
}

// parseFlags registers the server flags on app and converts the parsed values
// into configuration overrides. Unset flags leave lower precedence sources in
// charge.
func parseFlags(app *kingpin.Application, args []string) *config.CLIOverrides {
	configFile := app.Flag("config", "Path to YAML configuration file").String()
	port := app.Flag("port", "HTTP port exposed by the service").String()
	catalog := app.Flag("catalog", "Catalog source: a local file or s3://bucket/key").String()
	watch := app.Flag("watch", "Reload a local catalog file when it changes").Bool()
	strategy := app.Flag("strategy", "Default solver strategy").Enum(string(solver.StrategyGreedy), string(solver.StrategyExhaustive))
	maxItems := app.Flag("max-exhaustive-items", "Largest catalog exhaustive search accepts").Default("0").Int()
	workers := app.Flag("workers", "Goroutines used by exhaustive search").Default("0").Int()
	logLevel := app.Flag("log-level", "Log level (debug, info, warn, error)").String()
	rateLimitRPSFlag := app.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := app.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(app.Parse(args))

	overrides := &config.CLIOverrides{
		ConfigFile:      *configFile,
		Port:            port,
		CatalogSource:   catalog,
		DefaultStrategy: strategy,
		LogLevel:        logLevel,
	}

	if *watch {
		overrides.WatchCatalog = watch
	}

	if *maxItems > 0 {
		overrides.MaxExhaustiveItems = maxItems
	}

	if *workers > 0 {
		overrides.ExhaustiveWorkers = workers
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	return overrides
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
