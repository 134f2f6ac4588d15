// cmd/api/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/your-org/cart-engine/internal/config"
	"github.com/your-org/cart-engine/internal/domain/cart"
	"github.com/your-org/cart-engine/internal/domain/offline"
	"github.com/your-org/cart-engine/internal/domain/product"
	"github.com/your-org/cart-engine/internal/infrastructure/database/postgres"
	"github.com/your-org/cart-engine/internal/infrastructure/database/redis"
	"github.com/your-org/cart-engine/internal/interfaces/http"
	"github.com/your-org/cart-engine/internal/interfaces/http/routes"
	"github.com/your-org/cart-engine/internal/pkg/logger"
	"github.com/your-org/cart-engine/internal/pkg/syncerr"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg)
	appLogger.Infof("Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	// Connect to database
	db, err := postgres.NewConnection(cfg)
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg)
	if err != nil {
		appLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Health check
	if err := db.Health(); err != nil {
		appLogger.Fatalf("Database health check failed: %v", err)
	}

	if err := redisClient.Health(); err != nil {
		appLogger.Fatalf("Redis health check failed: %v", err)
	}

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB())

	if err := migration.RunAutoMigrations(); err != nil {
		appLogger.Fatalf("Database migration failed: %v", err)
	}

	if err := migration.CreateIndexes(); err != nil {
		appLogger.Warnf("Index creation failed: %v", err)
	}

	// Seed initial data in development
	if cfg.IsDevelopment() {
		if err := migration.SeedInitialData(); err != nil {
			appLogger.Warnf("Data seeding failed: %v", err)
		}
	}

	// Error accounting, classification and retry policy
	recorder := syncerr.NewRecorder()
	classifier := syncerr.NewClassifier(recorder, appLogger)
	policy := syncerr.NewRetryPolicy(cfg.Sync.MaxRetries, cfg.Sync.RetryBaseDelay, cfg.Sync.RetryMaxDelay, classifier, appLogger)

	// Connectivity starts online; clients and operators flip it through
	// the sync API
	connectivity := offline.NewConnectivity(true)

	// Cart engine wiring: snapshot persistence, per-session registry,
	// product source, validator and offline sync manager
	store := cart.NewRedisStore(redisClient.GetClient(), cfg.Sync.SnapshotTTL, cfg.Sync.SnapshotMaxAge, appLogger)
	registry := cart.NewRegistry(store, func() cart.MutationQueue { return offline.NewQueue() }, connectivity.Online, appLogger)

	products := product.NewService(db.GetDB(), appLogger)
	validator := cart.NewValidator(products, policy, classifier, cfg.Sync.LookupTimeout, appLogger)

	manager := offline.NewManager(registry, products, classifier, connectivity, cfg.Sync.MaxRetries, cfg.Sync.LookupTimeout, appLogger)
	manager.Start()

	// Periodic revalidation of resident carts, when configured
	validateCtx, stopValidation := context.WithCancel(context.Background())
	defer stopValidation()
	go validator.Run(validateCtx, registry, cfg.Sync.ValidateInterval, connectivity.Online)

	deps := &routes.Dependencies{
		Config:       cfg,
		Logger:       appLogger,
		Registry:     registry,
		Validator:    validator,
		Products:     products,
		Manager:      manager,
		Connectivity: connectivity,
		Recorder:     recorder,
	}

	// Create and start HTTP server
	server := http.NewServer(cfg, deps, db.GetDB(), redisClient.GetClient(), appLogger)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			appLogger.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down gracefully")

	// Give server 30 seconds to shutdown gracefully
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		appLogger.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	appLogger.Info("Server shutdown completed")
}
