package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/ll97/internal/logger"
	"github.com/stwalsh4118/ll97/internal/metrics"
	"github.com/stwalsh4118/ll97/internal/middleware"
)

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	Log         *logger.Logger
	CORSOrigins []string
	Health      *HealthHandler
	Projections *ProjectionHandler
}

// NewRouter builds the gin engine with middleware and every API route registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Add middleware in order: RequestID -> Logger -> Recovery -> CORS -> Metrics
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Log))
	router.Use(middleware.Recovery(cfg.Log))
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.Metrics())

	// Register health check routes
	router.GET("/health", cfg.Health.Health)
	router.GET("/health/ready", cfg.Health.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/info", cfg.Health.Info)
		v1.GET("/summary", cfg.Projections.Summary)

		buildings := v1.Group("/buildings/:bbl")
		{
			buildings.GET("", cfg.Projections.GetBuilding)
			buildings.GET("/projections", cfg.Projections.Projections)
			buildings.GET("/periods", cfg.Projections.Periods)
		}
	}

	return router
}
