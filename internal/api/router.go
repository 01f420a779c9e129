package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wqsolutions/internal/api/middleware"
	"wqsolutions/internal/config"
	"wqsolutions/internal/metrics"
)

// NewRouter builds the Gin engine with the ambient middleware chain, the
// health and metrics endpoints and the static upload mount.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		metrics.GinMiddleware(),
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static(cfg.Uploads.BaseURL, cfg.Uploads.Dir)

	return router
}
