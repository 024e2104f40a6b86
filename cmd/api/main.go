package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grocery-pricing-engine/internal/api"
	"grocery-pricing-engine/internal/core/pricing/cache"
	"grocery-pricing-engine/internal/core/resilience"
	"grocery-pricing-engine/internal/infrastructure/config"
	"grocery-pricing-engine/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger comes up right after config so everything below is structured.
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	priceCache, err := buildCache(cfg)
	if err != nil {
		common.LogFatal("Failed to initialize price cache", zap.Error(err))
	}

	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	if priceCache != nil {
		defer priceCache.Close()
		go priceCache.StartCleanup(cleanupCtx, cfg.Cache.CleanupInterval)
	}
	// Registered after the Close defer so the cleanup loop is cancelled
	// before the store closes under it.
	defer cancelCleanup()

	breakers := resilience.NewRegistry(resilience.Settings{
		FailureThreshold: cfg.Breaker.FailureThreshold,
		SuccessThreshold: cfg.Breaker.SuccessThreshold,
		Timeout:          cfg.Breaker.Timeout,
		MonitoringPeriod: cfg.Breaker.MonitoringPeriod,
	})

	router, err := api.SetupRouter(cfg, priceCache, breakers)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		common.LogInfo("starting application",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server",
				zap.Error(err),
			)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown",
			zap.Error(err),
		)
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}

// buildCache creates the price cache over the configured backend, or nil when
// caching is disabled.
func buildCache(cfg *config.Config) (*cache.PriceCache, error) {
	if !cfg.Cache.Enabled {
		common.LogInfo("price cache disabled")
		return nil, nil
	}

	var (
		store cache.Store
		err   error
	)
	switch cfg.Cache.Backend {
	case "redis":
		store, err = cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.StaleWindow)
	case "postgres":
		store, err = cache.NewPostgresStore(cfg.Cache.PostgresDSN)
	default:
		store = cache.NewMemoryStore()
	}
	if err != nil {
		return nil, err
	}

	common.LogInfo("price cache initialized",
		zap.String("backend", cfg.Cache.Backend),
		zap.Duration("ttl", cfg.Cache.TTL),
		zap.Duration("stale_window", cfg.Cache.StaleWindow),
	)
	return cache.New(store, cfg.Cache.TTL, cfg.Cache.StaleWindow), nil
}
