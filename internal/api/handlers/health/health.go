// Package health serves liveness, readiness and health endpoints.
package health

import (
	"net/http"
	"runtime"
	"time"

	"grocery-pricing-engine/internal/core/resilience"
	"grocery-pricing-engine/internal/infrastructure/config"
	"grocery-pricing-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// HealthResponse is the health endpoint body.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Breakers  map[string]interface{} `json:"breakers,omitempty"`
}

// HealthCheck reports process health plus circuit breaker state for every
// registered upstream.
func HealthCheck(c *gin.Context) {
	cfg, exists := c.Get("config")
	if !exists {
		common.LogError("configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "configuration not found"})
		return
	}
	conf, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid configuration type"})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   conf.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	if v, exists := c.Get("breakers"); exists {
		if registry, ok := v.(*resilience.Registry); ok {
			response.Breakers = registry.Stats()
		}
	}

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck reports whether the service should receive traffic.
func ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck reports whether the process is alive.
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
