package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"skin-trade-dashboard-go/internal/api"
	"skin-trade-dashboard-go/internal/config"
	"skin-trade-dashboard-go/internal/dashboard"
	"skin-trade-dashboard-go/internal/database"
	"skin-trade-dashboard-go/internal/logger"
	"skin-trade-dashboard-go/internal/store"
)

func main() {
	// Secrets such as cookies and the C5 app key may live in .env
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	svc := dashboard.NewFromConfig(&cfg, store.New(db), log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if result, err := svc.Import(ctx); err != nil {
		log.Warn("Initial import failed, serving stored trades", zap.Error(err))
	} else {
		log.Info("Initial import complete", zap.Int("trades", result.Stored))
	}

	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(&cfg.Server, svc, log)
	server.Start()

	<-ctx.Done()
	log.Info("Shutdown signal received, gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop web server", zap.Error(err))
	}
	log.Info("Dashboard has been shut down.")
}
