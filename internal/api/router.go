package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmashop/pricingapi/internal/api/handlers"
	"github.com/farmashop/pricingapi/internal/api/middleware"
	"github.com/farmashop/pricingapi/internal/config"
	"github.com/farmashop/pricingapi/internal/repository"
)

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	router.LoadHTMLGlob(cfg.Templates)

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusSeeOther, "/tarifas-clientes")
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Dashboard routes (admin only)
	tarifas := router.Group("/tarifas-clientes")
	tarifas.Use(middleware.AdminAuth(cfg, logger))
	{
		tarifas.GET("", handlers.HandleListTariffs(repos, logger))
		tarifas.POST("", handlers.HandleCreateTariff(repos, logger))
		tarifas.GET("/matriz", handlers.HandleActiveMatrix(repos, logger))
		tarifas.GET("/:id", handlers.HandleEditTariff(repos, logger))
		tarifas.POST("/:id", handlers.HandleUpdateTariff(repos, logger))
		tarifas.GET("/:id/precios", handlers.HandleTariffPrices(repos, logger))
		tarifas.POST("/:id/precios", handlers.HandleBulkSavePrices(repos, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal server error",
			"details": fmt.Sprintf("%v", recovered),
		})
	})
}

// loggingMiddleware logs HTTP requests with a per-request id
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method
		requestID := uuid.NewString()
		c.Set("request_id", requestID)

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
