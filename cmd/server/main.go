package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbautista/tindahan-backend/config"
	"github.com/rbautista/tindahan-backend/internal/app/controller"
	"github.com/rbautista/tindahan-backend/internal/app/repository"
	"github.com/rbautista/tindahan-backend/internal/app/service"
	"github.com/rbautista/tindahan-backend/internal/db"
	"github.com/rbautista/tindahan-backend/internal/middleware"
	"github.com/rbautista/tindahan-backend/internal/router"
	"github.com/rbautista/tindahan-backend/internal/storage"
	"github.com/rbautista/tindahan-backend/pkg/logger"
	"github.com/rbautista/tindahan-backend/pkg/oauth"
	"github.com/rbautista/tindahan-backend/pkg/redis"
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
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting TINDAHAN Backend Server", map[string]interface{}{
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

	// Bootstrap the admin account if configured
	if err := db.Seed(); err != nil {
		logger.Warn("Failed to seed database", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Redis backs the availability cache and the token blacklist. The
	// server still works without it, so a failure here only warns.
	if err := redis.Init(&cfg.Redis); err != nil {
		logger.Warn("Redis unavailable, running without cache", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		defer redis.Close()
	}
	cache := redis.GetClient()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.GetDB())
	productRepo := repository.NewProductRepository(db.GetDB())
	storeRepo := repository.NewStoreRepository(db.GetDB())
	storeProductRepo := repository.NewStoreProductRepository(db.GetDB())
	passwordResetRepo := repository.NewPasswordResetRepository(db.GetDB())

	// Google sign-in stays off until a client ID is configured
	var googleVerifier service.OAuthVerifier
	if cfg.OAuth.GoogleClientID != "" {
		googleVerifier = oauth.NewGoogleVerifier(oauth.GoogleConfig{
			ClientID: cfg.OAuth.GoogleClientID,
		})
	}

	// Initialize services
	authService := service.NewAuthService(
		userRepo,
		googleVerifier,
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	passwordResetService := service.NewPasswordResetService(passwordResetRepo, userRepo)
	availabilityService := service.NewAvailabilityService(storeProductRepo, cache)
	lookupService := service.NewLookupService(productRepo, availabilityService)
	productService := service.NewProductService(productRepo)
	storeService := service.NewStoreService(storeRepo, availabilityService)
	storeProductService := service.NewStoreProductService(storeProductRepo, storeRepo, productRepo, availabilityService)

	// Initialize storage
	s3Storage := storage.NewS3Storage(&cfg.S3)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	lookupController := controller.NewLookupController(lookupService)
	productController := controller.NewProductController(productService)
	storeController := controller.NewStoreController(storeService, storeProductService)
	adminController := controller.NewAdminController(storeService)
	uploadController := controller.NewUploadController(s3Storage)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Setup router
	r := router.NewRouter(
		authController,
		lookupController,
		productController,
		storeController,
		adminController,
		uploadController,
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
