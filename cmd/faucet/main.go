package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chainscan/explorer/internal/application/services"
	"github.com/chainscan/explorer/internal/config"
	"github.com/chainscan/explorer/internal/infrastructure/cache"
	"github.com/chainscan/explorer/internal/infrastructure/chain"
	"github.com/chainscan/explorer/internal/infrastructure/wallet"
	"github.com/chainscan/explorer/internal/presentation/handlers"
	"github.com/chainscan/explorer/internal/presentation/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg.Log.Level)
	defer logger.Sync()

	logger.Info("Starting faucet",
		zap.String("rpc_url", cfg.Chain.RPCURL),
		zap.Int64("chain_id", cfg.Chain.ChainID),
		zap.String("drip_amount", cfg.Faucet.DripAmount),
		zap.Duration("cooldown", cfg.Faucet.CooldownTime),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Chain node client, reconnects in the background
	chainClient := chain.NewClient(cfg.Chain, logger)
	go chainClient.Run(ctx)

	// Redis backs the cooldown store, so unlike the explorer cache it is
	// required here.
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.Server.CacheTTL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisCache.Close()

	cooldowns := cache.NewCooldownStore(redisCache.Client())

	// Derive the faucet account from the configured mnemonic
	faucetWallet, err := wallet.NewWallet(
		cfg.Faucet.Mnemonic,
		cfg.Chain.ChainID,
		cfg.Faucet.GasPriceWei,
		chainClient,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to load faucet wallet", zap.Error(err))
	}

	logger.Info("Faucet account loaded", zap.String("address", faucetWallet.Address()))

	faucetService, err := services.NewFaucetService(
		faucetWallet,
		cooldowns,
		chainClient,
		cfg.Faucet,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to create faucet service", zap.Error(err))
	}

	faucetHandler := handlers.NewFaucetHandler(faucetService, logger)
	healthHandler := handlers.NewHealthHandler(nil, redisCache)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", healthHandler.Health)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/faucet", func(r chi.Router) {
		r.Use(middleware.Throttle(cfg.Faucet.RateLimitRequests, cfg.Faucet.RateLimitWindow))
		faucetHandler.RegisterRoutes(r)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("Faucet server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	logger.Info("Received shutdown signal, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}

	logger.Info("Server stopped")
}

func setupLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, _ := config.Build()
	return logger
}
