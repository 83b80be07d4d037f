package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/lamyda/lamyda-backend/internal/cache"
	"github.com/lamyda/lamyda-backend/internal/db"
	"github.com/lamyda/lamyda-backend/internal/handlers"
	"github.com/lamyda/lamyda-backend/internal/logger"
	"github.com/lamyda/lamyda-backend/internal/middleware"
	"github.com/lamyda/lamyda-backend/internal/observability"
	"github.com/lamyda/lamyda-backend/internal/repos"
	"github.com/lamyda/lamyda-backend/internal/server"
	"github.com/lamyda/lamyda-backend/internal/services"
	"github.com/lamyda/lamyda-backend/internal/utils"
)

const serviceName = "lamyda-backend"

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	shutdownOtel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
	})
	if shutdownOtel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOtel(ctx)
		}()
	}

	// Database
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Database init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Auto migration failed", "error", err)
	}
	gormDB := postgresService.DB()

	// Redis listing cache
	redisClient := cache.NewRedisClient(log)
	listingCache := cache.NewProcessListingCache(log, redisClient)

	// Repos
	log.Info("Setting up repos...")
	areaRepo := repos.NewAreaRepo(gormDB, log)
	teamRepo := repos.NewTeamRepo(gormDB, log)
	processRepo := repos.NewProcessRepo(gormDB, log)
	documentRepo := repos.NewDocumentRepo(gormDB, log)

	// Services
	log.Info("Setting up services...")
	bucketService, err := services.NewBucketService(log)
	if err != nil {
		log.Error("Could not init BucketService", "error", err)
		os.Exit(1)
	}
	documentService := services.NewDocumentService(gormDB, log, bucketService, documentRepo)
	processService := services.NewProcessService(gormDB, log, processRepo, documentService, listingCache)
	areaService := services.NewAreaService(gormDB, log, areaRepo)
	teamService := services.NewTeamService(gormDB, log, teamRepo)

	// Handlers
	log.Info("Setting up handlers...")
	processHandler := handlers.NewProcessHandler(log, processService)
	areaHandler := handlers.NewAreaHandler(log, areaService)
	teamHandler := handlers.NewTeamHandler(log, teamService)

	// Middleware
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	router := server.NewRouter(server.RouterConfig{
		ServiceName:    serviceName,
		AuthMiddleware: authMiddleware,
		ProcessHandler: processHandler,
		AreaHandler:    areaHandler,
		TeamHandler:    teamHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
