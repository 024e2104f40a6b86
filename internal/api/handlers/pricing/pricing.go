// Package pricing exposes the price resolution HTTP surface.
package pricing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"grocery-pricing-engine/internal/core/pricing"
	"grocery-pricing-engine/internal/core/pricing/cache"
	"grocery-pricing-engine/internal/infrastructure/config"
	"grocery-pricing-engine/internal/pkg/common"
)

// resolveRequest is the wire shape of a resolution request. Ingredients are
// duck-typed: bare strings or objects with aliased field names both work.
type resolveRequest struct {
	Ingredients          []interface{} `json:"ingredients"`
	Location             string        `json:"location"`
	PreferredStore       string        `json:"preferredStore"`
	GenerateShoppingPlan bool          `json:"generateShoppingPlan"`
	Debug                bool          `json:"debug"`
}

// Handler serves the pricing endpoints.
type Handler struct {
	service *pricing.Service
	cache   *cache.PriceCache // nil when caching is disabled
	debug   bool
}

// NewHandler creates the pricing handler.
func NewHandler(service *pricing.Service, priceCache *cache.PriceCache, cfg *config.Config) *Handler {
	return &Handler{
		service: service,
		cache:   priceCache,
		debug:   cfg.App.Debug,
	}
}

// Resolve handles POST /api/v1/pricing/resolve.
func (h *Handler) Resolve(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "invalid request body",
		})
		return
	}

	ingredients := common.NormalizeIngredients(req.Ingredients)
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "at least one ingredient with a name is required",
		})
		return
	}
	if req.Location == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "location is required",
		})
		return
	}

	common.LogInfo("resolving prices",
		zap.Int("ingredients", len(ingredients)),
		zap.String("location", req.Location),
		zap.String("preferred_store", req.PreferredStore),
		zap.Bool("shopping_plan", req.GenerateShoppingPlan),
		zap.String("request_id", c.GetHeader("X-Request-ID")),
	)

	resp, err := h.service.ResolvePrices(c.Request.Context(), pricing.Request{
		Ingredients:    ingredients,
		Location:       req.Location,
		PreferredStore: req.PreferredStore,
		BuildPlan:      req.GenerateShoppingPlan,
	})
	if err != nil {
		h.writeError(c, err, req.Debug)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CacheStats handles GET /api/v1/pricing/cache/stats.
func (h *Handler) CacheStats(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}
	stats := h.cache.Stats()
	stats["enabled"] = true
	c.JSON(http.StatusOK, stats)
}

// CacheCleanup handles POST /api/v1/pricing/cache/cleanup.
func (h *Handler) CacheCleanup(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false, "purged": 0})
		return
	}
	purged, err := h.cache.CleanupExpired(c.Request.Context())
	if err != nil {
		common.LogError("cache cleanup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, common.ErrorResponse{
			Code:    common.ErrCodeCacheUnavailable,
			Message: "cache cleanup failed",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enabled": true, "purged": purged})
}

// writeError maps pipeline errors onto HTTP responses. With the request
// debug flag set (or app-level debug on) the underlying cause, including any
// upstream response body, is echoed into the details field.
func (h *Handler) writeError(c *gin.Context, err error, debug bool) {
	status := http.StatusBadGateway
	code := common.ErrCodeBadGateway
	message := "price source unavailable"

	var ce *common.CustomError
	if errors.As(err, &ce) {
		code = ce.Code
		message = ce.Message
		if ce.Status >= 400 {
			status = ce.Status
		}
	}

	resp := common.ErrorResponse{Code: code, Message: message}
	if debug || h.debug {
		resp.Details = err.Error()
	}

	common.LogError("price resolution failed",
		zap.Int("status", status),
		zap.String("error_code", code),
		zap.Error(err),
	)
	c.JSON(status, resp)
}
