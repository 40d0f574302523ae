package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gitlab.com/maplesense1/sensor.registry/src/production/SNR.ApiService/health"
	logger "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Logger"
	metrics "gitlab.com/maplesense1/sensor.registry/src/production/SNR.Metrics"
)

// HealthController handles health and metrics requests
type HealthController struct {
	healthChecker *health.HealthChecker
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(healthChecker *health.HealthChecker, metrics *metrics.Metrics, logger *logger.Logger) *HealthController {
	return &HealthController{
		healthChecker: healthChecker,
		metrics:       metrics,
		logger:        logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router gin.IRouter) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
	router.GET("/metrics", gin.WrapH(c.metrics.Handler()))
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	status, ready := c.healthChecker.GetHealthStatus(ctx)
	if !ready {
		c.logger.Warn("Readiness check failed")
		ctx.JSON(http.StatusServiceUnavailable, status)
		return
	}
	ctx.JSON(http.StatusOK, status)
}
