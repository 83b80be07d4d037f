package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/lamyda/lamyda-backend/internal/handlers"
	"github.com/lamyda/lamyda-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName    string
	AuthMiddleware *middleware.AuthMiddleware
	ProcessHandler *handlers.ProcessHandler
	AreaHandler    *handlers.AreaHandler
	TeamHandler    *handlers.TeamHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		api.POST("/processes", cfg.ProcessHandler.Create)
		api.GET("/processes", cfg.ProcessHandler.List)
		api.GET("/processes/:sequentialId", cfg.ProcessHandler.Get)

		api.POST("/areas", cfg.AreaHandler.Create)
		api.GET("/areas", cfg.AreaHandler.List)
		api.GET("/areas/:sequentialId", cfg.AreaHandler.Get)

		api.POST("/teams", cfg.TeamHandler.Create)
		api.GET("/teams", cfg.TeamHandler.List)
		api.GET("/teams/:sequentialId", cfg.TeamHandler.Get)
	}

	return router
}
