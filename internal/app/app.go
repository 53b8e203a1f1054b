package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rentshare_backend/database"
	"rentshare_backend/internal/auth"
	"rentshare_backend/internal/config"
	"rentshare_backend/internal/email"
	"rentshare_backend/internal/geo"
	"rentshare_backend/internal/handlers"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/middleware"
	"rentshare_backend/internal/models"
	"rentshare_backend/internal/repositories"
	"rentshare_backend/internal/routes"
	"rentshare_backend/internal/services"
	"rentshare_backend/internal/storage"
	"rentshare_backend/internal/validator"
	"rentshare_backend/internal/workers"
	"rentshare_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	auth.Configure(cfg.JWT.Secret, cfg.AccessTTL(), cfg.RefreshTTL())
	apperrors.SetDebug(cfg.IsDevelopment())

	logger.Info("Connecting to database...")
	gormDB, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(gormDB); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	repos := services.NewRepositories()
	if err := seedFirstAdmin(gormDB, repos.Users, cfg); err != nil {
		logger.Fatal("Failed to seed first admin user", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ginRouter := SetupRouter(cfg, gormDB, repos)

	workers.NewOfferWorker(
		gormDB,
		repos.Offers,
		repos.RefreshTokens,
		time.Duration(cfg.Workers.OfferExpiryMinutes)*time.Minute,
		time.Duration(cfg.Workers.TokenCleanupMinutes)*time.Minute,
	).Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              address,
		Handler:           ginRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
}

// SetupRouter builds storage, mail, geo index, services and handlers and returns the gin engine.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB, repos *services.Repositories) *gin.Engine {
	storageInstance, err := NewStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "type", cfg.Storage.Type)

	serviceContainer := initializeServices(cfg, repos, storageInstance)
	appHandlers := handlers.NewAppHandlers(serviceContainer, validator.New())

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := initializeGinRouter(cfg, gormDB)

	opts := routes.Options{}
	if cfg.Storage.Type == "local" {
		opts.MediaDir = cfg.Storage.BasePath
		opts.MediaURL = cfg.Storage.BaseURL
	}
	routes.RegisterRoutes(ginRouter, appHandlers, opts)

	return ginRouter
}

// NewStorage builds the configured storage backend.
func NewStorage(cfg *config.Config) (storage.Storage, error) {
	return storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		PublicRead: cfg.Storage.PublicRead,
	})
}

// NewMediaService builds the photo pipeline from the upload settings; the seed command shares it.
func NewMediaService(cfg *config.Config, store storage.Storage) services.MediaService {
	return services.NewMediaService(store, &services.MediaConfig{
		MaxFileSize:  cfg.Upload.MaxSize,
		AllowedTypes: cfg.Upload.AllowedTypes,
		ImageQuality: cfg.Upload.ImageQuality,
	})
}

func initializeServices(cfg *config.Config, repos *services.Repositories, storageInstance storage.Storage) *services.ServiceContainer {
	emailProvider, err := email.NewProvider(email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		logger.Fatal("Failed to initialize email provider", "error", err)
	}

	return services.NewServiceContainer(repos, NewMediaService(cfg, storageInstance), emailProvider, NewGeoIndex(cfg))
}

// NewGeoIndex connects to redis when enabled; it returns nil when redis is off or unreachable.
func NewGeoIndex(cfg *config.Config) services.GeoIndex {
	if !cfg.Redis.Enabled {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, nearby search uses SQL", "addr", cfg.Redis.Addr, "error", err)
		_ = rdb.Close()
		return nil
	}

	logger.Info("Redis geo index enabled", "addr", cfg.Redis.Addr)
	return geo.NewListingLocator(rdb)
}

func initializeGinRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstAdmin creates the configured admin account unless it already exists.
func seedFirstAdmin(db *gorm.DB, users repositories.UserRepository, cfg *config.Config) error {
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	_, err := users.FindByEmail(db, cfg.Admin.Email)
	if err == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", cfg.Admin.Email)
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", err)
	}

	hash, err := auth.HashPassword(cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.User{
		Email:        cfg.Admin.Email,
		Username:     "admin",
		PasswordHash: hash,
		Role:         models.UserRoleAdmin,
	}
	if err := users.Create(db, admin); err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("Created first admin user", "email", cfg.Admin.Email)
	return nil
}
