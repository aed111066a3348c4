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
	"golang.org/x/sync/errgroup"

	"github.com/chainscan/explorer/internal/application/services"
	"github.com/chainscan/explorer/internal/config"
	"github.com/chainscan/explorer/internal/infrastructure/cache"
	"github.com/chainscan/explorer/internal/infrastructure/chain"
	"github.com/chainscan/explorer/internal/infrastructure/database"
	"github.com/chainscan/explorer/internal/presentation/handlers"
	"github.com/chainscan/explorer/internal/presentation/middleware"
	"github.com/chainscan/explorer/internal/presentation/ws"
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

	logger.Info("Starting explorer",
		zap.String("rpc_url", cfg.Chain.RPCURL),
		zap.Int64("chain_id", cfg.Chain.ChainID),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Connect to Redis cache (optional)
	redisCache, err := cache.NewRedisCache(cfg.Redis, cfg.Server.CacheTTL, logger)
	if err != nil {
		logger.Warn("Failed to connect to Redis, running without cache", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Chain node client, reconnects in the background
	chainClient := chain.NewClient(cfg.Chain, logger)
	stakingAPI := chain.NewStakingAPI(cfg.Chain.StakingAPIURL, logger)

	// Create repositories
	blockRepo := database.NewBlockRepo(db.DB())
	txRepo := database.NewTransactionRepo(db.DB())
	validatorRepo := database.NewValidatorRepo(db.DB())
	watermarkRepo := database.NewWatermarkRepo(db.DB())

	// WebSocket fanout
	broker := ws.NewBroker()
	hub := ws.NewHub(broker, logger)

	// Create services
	indexerService := services.NewIndexerService(
		chainClient,
		stakingAPI,
		blockRepo,
		txRepo,
		validatorRepo,
		watermarkRepo,
		broker,
		cfg.Indexer,
		logger,
	)

	var cacheView services.Cache
	if redisCache != nil {
		cacheView = redisCache
	}
	explorerService := services.NewExplorerService(
		chainClient,
		blockRepo,
		txRepo,
		validatorRepo,
		cacheView,
		logger,
	)

	// Create handlers
	explorerHandler := handlers.NewExplorerHandler(explorerService, logger)

	var cacheChecker handlers.HealthChecker
	if redisCache != nil {
		cacheChecker = redisCache
	}
	healthHandler := handlers.NewHealthHandler(db, cacheChecker)

	// Setup router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.Use(chimiddleware.Recoverer)

	// Health endpoints (no rate limiting)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Get("/live", healthHandler.Live)
	r.Handle("/metrics", promhttp.Handler())

	// WebSocket endpoint
	r.Get("/ws", hub.Handle)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cfg.Server.RateLimitRPS))
		explorerHandler.RegisterRoutes(r)
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	indexerService.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return chainClient.Run(gctx)
	})

	g.Go(func() error {
		logger.Info("API server starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("Received shutdown signal, shutting down server...")
		indexerService.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Shutdown error", zap.Error(err))
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
