// Package api wires middleware, services and routes into the gin engine.
package api

import (
	"context"
	"net/http"
	"time"

	"grocery-pricing-engine/internal/api/handlers/health"
	pricingHandler "grocery-pricing-engine/internal/api/handlers/pricing"
	"grocery-pricing-engine/internal/api/middleware"
	"grocery-pricing-engine/internal/core/pricing"
	"grocery-pricing-engine/internal/core/pricing/cache"
	"grocery-pricing-engine/internal/core/pricing/portion"
	"grocery-pricing-engine/internal/core/pricing/store"
	"grocery-pricing-engine/internal/core/resilience"
	"grocery-pricing-engine/internal/core/upstream"
	"grocery-pricing-engine/internal/infrastructure/config"
	"grocery-pricing-engine/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// Request deadline for the whole pipeline; several upstream batches must
	// fit inside it.
	timeoutDuration = 60 * time.Second
	// Ingredient lists are small; 1MB is generous.
	maxBodySize = 1 << 20
)

// SetupRouter builds the engine. The cache and breaker registry are created
// by the caller so their lifecycle outlives individual requests.
func SetupRouter(cfg *config.Config, priceCache *cache.PriceCache, breakers *resilience.Registry) (*gin.Engine, error) {
	common.LogInfo("starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	// Service construction.
	var geocoder store.Geocoder
	if cfg.Directory.Enabled {
		if dc := store.NewDirectoryClient(cfg.Directory.BaseURL, cfg.Directory.Timeout); dc != nil {
			geocoder = dc
		}
	}

	upstreamLimiter := resilience.NewSlidingLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	pricingSvc := pricing.NewService(
		upstream.NewClient(&cfg.PriceSource),
		priceCache,
		portion.NewResolver(cfg.Pricing.PortionFraction),
		store.NewValidator(geocoder),
		breakers,
		upstreamLimiter,
		cfg.Pricing,
	)

	common.LogInfo("pricing service initialized",
		zap.Bool("cache_enabled", priceCache != nil),
		zap.String("model", cfg.PriceSource.Model),
		zap.Int("batch_size", cfg.Pricing.BatchSize),
		zap.Duration("upstream_timeout", cfg.Pricing.UpstreamTimeout),
		zap.Bool("directory_enabled", geocoder != nil),
	)

	// Request timeout plus context injection for handlers.
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Set("config", cfg)
		c.Set("breakers", breakers)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			common.LogError("request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
		}
	})

	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	api := router.Group("/api/v1")
	{
		handler := pricingHandler.NewHandler(pricingSvc, priceCache, cfg)

		pricingGroup := api.Group("/pricing")
		{
			pricingGroup.POST("/resolve", handler.Resolve)
			pricingGroup.GET("/cache/stats", handler.CacheStats)
			pricingGroup.POST("/cache/cleanup", handler.CacheCleanup)
		}
	}

	common.LogInfo("router setup completed",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
