package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasbino/kasbino-backend/config"
	"github.com/kasbino/kasbino-backend/internal/app/controller"
	"github.com/kasbino/kasbino-backend/internal/app/repository"
	"github.com/kasbino/kasbino-backend/internal/app/service"
	"github.com/kasbino/kasbino-backend/internal/db"
	"github.com/kasbino/kasbino-backend/internal/middleware"
	"github.com/kasbino/kasbino-backend/internal/router"
	"github.com/kasbino/kasbino-backend/internal/scheduler"
	"github.com/kasbino/kasbino-backend/internal/storage"
	"github.com/kasbino/kasbino-backend/internal/websocket"
	"github.com/kasbino/kasbino-backend/pkg/logger"
	"github.com/kasbino/kasbino-backend/pkg/redis"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting KASBINO Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize Redis (token revocation, view counters)
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to initialize Redis", err)
	}
	defer redis.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	categoryRepo := repository.NewCategoryRepository(db.GetDB())
	businessRepo := repository.NewBusinessRepository(db.GetDB())
	ratingRepo := repository.NewRatingRepository(db.GetDB())
	chatRepo := repository.NewChatRepository(db.GetDB())
	contactRepo := repository.NewContactRepository(db.GetDB())

	// WebSocket hub for live chat pushes
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	businessService := service.NewBusinessService(businessRepo, categoryRepo, ratingRepo)
	ratingService := service.NewRatingService(ratingRepo, businessRepo)
	chatService := service.NewChatService(chatRepo, businessRepo, userRepo, hub)
	contactService := service.NewContactService(contactRepo)

	// S3 storage for presigned uploads
	s3Storage := storage.NewS3Storage(
		cfg.S3.Region,
		cfg.S3.Bucket,
		cfg.S3.AccessKeyID,
		cfg.S3.SecretAccessKey,
		cfg.S3.BaseURL,
	)

	// Initialize controllers
	authController := controller.NewAuthController(authService)
	businessController := controller.NewBusinessController(businessService)
	ratingController := controller.NewRatingController(ratingService)
	chatController := controller.NewChatController(chatService, hub)
	uploadController := controller.NewUploadController(s3Storage)
	contactController := controller.NewContactController(contactService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// View counter flush scheduler
	viewScheduler := scheduler.NewViewCountScheduler(businessRepo)
	if err := viewScheduler.Start(); err != nil {
		logger.Fatal("Failed to start view count scheduler", err)
	}
	defer viewScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		businessController,
		ratingController,
		chatController,
		uploadController,
		contactController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
