package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/dashboard"
	"skin-trade-dashboard-go/internal/database"
	"skin-trade-dashboard-go/internal/logger"
	"skin-trade-dashboard-go/internal/refresher"
	"skin-trade-dashboard-go/internal/store"
)

func main() {
	_ = godotenv.Load()

	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connection successful and schema migrated.")

	svc := dashboard.NewFromConfig(&cfg, store.New(db), log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	r := refresher.New(log)
	if err := r.Register(ctx, &cfg.Refresh, svc); err != nil {
		log.Fatal("Failed to schedule refresh jobs", zap.Error(err))
	}
	if r.Len() == 0 {
		log.Warn("No refresh schedules configured, nothing to do")
		return
	}
	r.Run(ctx)

	log.Info("Refresher has been shut down.")
}
