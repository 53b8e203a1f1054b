package database

import (
	"fmt"
	"time"

	"rentshare_backend/internal/config"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres connection described by cfg and verifies it with a ping.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	slow := time.Duration(cfg.Database.SlowQueryMS) * time.Millisecond
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{
		Logger:         logger.NewGormLogger(slow, cfg.IsDevelopment()),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// Models lists every table of the marketplace in dependency order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.RefreshToken{},
		&models.Listing{},
		&models.ListingRate{},
		&models.ListingLocation{},
		&models.ListingPhoto{},
		&models.Offer{},
		&models.Review{},
		&models.Transaction{},
	}
}

// AutoMigrate creates the uuid extension and migrates all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	// emails are unique regardless of case
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`).Error; err != nil {
		return fmt.Errorf("failed to create email index: %w", err)
	}
	logger.Info("AutoMigrate completed")
	return nil
}
