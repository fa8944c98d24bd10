package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"papertrade-go/internal/auth"
	"papertrade-go/internal/catalog"
	"papertrade-go/internal/config"
	"papertrade-go/internal/database"
	"papertrade-go/internal/engine"
	"papertrade-go/internal/ledger"
	"papertrade-go/internal/logger"
	"papertrade-go/internal/quotes"
	"papertrade-go/internal/server"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.File)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database and seed the instrument catalog
	db, err := database.NewDatabase(&cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	cat := catalog.New(db, log)
	ldg := ledger.New(ledger.NewStore(db), cat, &cfg, log)
	authSvc := auth.NewService(db, &cfg.Auth)

	// The quote feed is optional; without it catalog prices stay at their
	// seeded values.
	var quoteClient quotes.ClientInterface
	if cfg.Quotes.Enabled {
		quoteClient = quotes.NewClient(&cfg.Quotes, log)
		log.Info("Quote feed enabled", zap.String("base_url", cfg.Quotes.BaseURL))
	}

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Start the HTTP API
	apiServer := server.NewServer(log, &cfg, db, ldg, cat, authSvc)
	apiServer.Start()

	// Run the settlement engine until shutdown
	eng := engine.NewEngine(log, &cfg, db, ldg, cat, quoteClient)
	eng.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server cleanly", zap.Error(err))
	}

	log.Info("Server has been shut down.")
}
