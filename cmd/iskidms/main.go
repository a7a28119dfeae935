// iskidms - Device Credential Management Service
//
// This is the main entry point for the iskidms server. Agents register and
// create device credential accounts; administrators approve, transfer,
// import, and delete them through the admin API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/haandev/iskidms/migrations"

	"github.com/haandev/iskidms/internal/api"
	"github.com/haandev/iskidms/internal/auth"
	"github.com/haandev/iskidms/internal/device"
	"github.com/haandev/iskidms/internal/infrastructure/config"
	"github.com/haandev/iskidms/internal/infrastructure/database"
	"github.com/haandev/iskidms/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// A .env file is optional; real env vars win either way.
	//nolint:errcheck // missing .env is the normal case
	godotenv.Load()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting iskidms",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories and domain components
	userRepo := auth.NewUserRepository(db.DB)
	sessionRepo := auth.NewSessionRepository(db.DB)
	deviceEngine := device.NewEngine(device.NewRepository(db.DB), userRepo, log)

	// Seed the first admin account on an empty database
	if _, seedErr := auth.SeedAdmin(ctx, userRepo, log); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Start the expired-session sweeper
	sweeper := auth.NewSweeper(sessionRepo, log, cfg.SweepInterval())
	sweeper.Start(ctx)
	defer func() {
		log.Info("stopping session sweeper")
		sweeper.Close()
	}()
	log.Info("session sweeper started", "interval", cfg.SweepInterval())

	// Start the API server
	server, err := api.New(api.Deps{
		Config:   cfg,
		Logger:   log,
		Users:    userRepo,
		Sessions: sessionRepo,
		Devices:  deviceEngine,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()
	log.Info("API server started", "host", cfg.API.Host, "port", cfg.API.Port)

	// Verify connections are healthy
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (graceful drain)
	// 2. Session sweeper
	// 3. Database

	log.Info("iskidms stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ISKIDMS_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ISKIDMS_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
