package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Re-Quant/calc/internal/binance"
	"github.com/Re-Quant/calc/internal/config"
	"github.com/Re-Quant/calc/internal/database"
	"github.com/Re-Quant/calc/internal/logger"
	"github.com/Re-Quant/calc/internal/planner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Connect to the database
	db, err := database.NewDatabase(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	store := database.NewPlanStore(db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Market prices are only needed for plans with offset legs, so an
	// unreachable API is logged and not fatal.
	restClient := binance.NewRestClient(cfg.Binance, log)
	if _, err := restClient.GetServerTime(ctx); err != nil {
		log.Warn("Binance API unreachable, offset plans will fail", zap.Error(err))
	}

	svc := planner.NewService(log, restClient, store, cfg.Defaults)

	mux := http.NewServeMux()
	NewAPIHandler(log.Named("api"), svc, store).Routes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutdown signal received, gracefully shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting web server", zap.String("address", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("Web server failed", zap.Error(err))
	}
	log.Info("Server has been shut down.")
}
