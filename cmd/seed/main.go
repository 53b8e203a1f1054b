package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"rentshare_backend/database"
	"rentshare_backend/internal/app"
	"rentshare_backend/internal/config"
	"rentshare_backend/internal/logger"
	"rentshare_backend/internal/seed"
	"rentshare_backend/internal/services"
)

func main() {
	reset := flag.Bool("reset", false, "truncate all marketplace tables before seeding")
	photoURL := flag.String("photo-url", seed.DefaultPhotoURL, "image downloaded as the first listing's photo")
	flag.Parse()

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	store, err := app.NewStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	seeder := seed.NewSeeder(services.NewRepositories(), app.NewMediaService(cfg, store), app.NewGeoIndex(cfg))
	if err := seeder.Run(ctx, db, seed.Options{Reset: *reset, PhotoURL: *photoURL}); err != nil {
		logger.Fatal("Seeding failed", "error", err)
	}
	logger.Info("Seeding completed")
}
