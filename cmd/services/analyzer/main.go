package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/trendscope/internal/analytics/loader"
	"github.com/soltixdb/trendscope/internal/cache"
	"github.com/soltixdb/trendscope/internal/config"
	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/metrics"
	"github.com/soltixdb/trendscope/internal/router"
	"github.com/soltixdb/trendscope/internal/services"
	"github.com/soltixdb/trendscope/internal/utils"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Analyzer service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	metrics.Init()

	// Result cache (configurable backend)
	logger.Info("Opening result cache", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL.String())
	backend, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to open result cache", "error", err)
	}
	store := cache.NewResultStore(backend, cfg.Cache.TTL, cfg.Cache.Compress, logger.With("component", "cache"))
	defer func() { _ = store.Close() }()

	checks := map[string]func() error{}
	if p, ok := backend.(cache.Pinger); ok {
		checks["cache"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), utils.HealthCheckTimeout)
			defer cancel()
			return p.Ping(ctx)
		}
	}

	// Optional InfluxDB series source
	var source services.SeriesSource
	if cfg.Influx.Enabled {
		logger.Info("Connecting to InfluxDB", "url", cfg.Influx.URL, "org", cfg.Influx.Org, "bucket", cfg.Influx.Bucket)
		influx := loader.NewInfluxSourceFromURL(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org)
		defer influx.Close()
		source = influx
		checks["influx"] = func() error {
			ctx, cancel := context.WithTimeout(context.Background(), utils.HealthCheckTimeout)
			defer cancel()
			return influx.Ping(ctx)
		}
	} else {
		logger.Info("InfluxDB source disabled")
	}

	// Log authentication status
	if cfg.Auth.Enabled {
		logger.Info("Authentication enabled", "num_keys", len(cfg.Auth.APIKeys), "jwt", cfg.Auth.JWTSecret != "")
	} else {
		logger.Warn("Authentication DISABLED - all requests will be allowed")
	}

	analysisService := services.NewAnalysisService(logger, cfg.Analysis, cfg.Influx, source, store)
	app := router.New(logger, analysisService, checks, *cfg)

	// Start server in goroutine
	go func() {
		addr := cfg.GetServerAddress()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
