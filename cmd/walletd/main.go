package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"travelwallet/internal/config"
	"travelwallet/internal/events"
	"travelwallet/internal/geo"
	apphttp "travelwallet/internal/http"
	"travelwallet/internal/rates"
	"travelwallet/internal/services"
	"travelwallet/internal/store"
	"travelwallet/internal/store/memory"
	"travelwallet/internal/store/sqlite"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Choose data backend (default: memory).
	var st store.ExpenseStore
	switch cfg.DataBackend {
	case "sqlite":
		s, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		st = s
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		st = memory.New()
		logger.Info("Initialized memory backend")
	}

	rateClient := rates.NewClient(cfg.RatesURL, cfg.RatesBase, cfg.RatesTimeout)

	var geocoder *geo.Client
	if cfg.GeocodeURL != "" {
		geocoder = geo.NewClient(cfg.GeocodeURL, 5*time.Second)
		logger.Info("Reverse geocoding enabled", "url", cfg.GeocodeURL)
	}

	// The event feed is optional. A broker that is down at startup disables
	// the feed rather than blocking the wallet.
	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Event feed unavailable, continuing without it", "error", err)
		} else {
			publisher = p
			logger.Info("Event feed enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	svc := services.NewExpenseService(st, geocoder, publisher)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Error("Cleanup error", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm up: check the store and attempt a first rate fetch. A failed
	// fetch is not fatal, breakdowns report unavailable until a retry lands.
	warm, warmCtx := errgroup.WithContext(ctx)
	warm.Go(func() error {
		pingCtx, pingCancel := context.WithTimeout(warmCtx, 5*time.Second)
		defer pingCancel()
		return st.Ping(pingCtx)
	})
	warm.Go(func() error {
		if err := rateClient.Refresh(warmCtx); err != nil {
			logger.Warn("Initial rate fetch failed, will retry on interval", "error", err)
		}
		return nil
	})
	if err := warm.Wait(); err != nil {
		logger.Error("Store unavailable", "error", err)
		os.Exit(1)
	}

	go func() {
		_ = rateClient.Run(ctx, cfg.RatesRefreshInterval)
	}()

	srv := apphttp.NewServer(":"+cfg.Port, svc, rateClient)

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting travelwallet server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
