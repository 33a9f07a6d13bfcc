package main

import (
	"log"

	"dq-index/internal/config"
	"dq-index/internal/database"
	"dq-index/internal/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	// Run migrations
	if err := database.RunMigrations(cfg.DB.Path); err != nil {
		l.Fatal("Failed to run migrations", zap.Error(err), zap.String("path", cfg.DB.Path))
	}

	version, dirty, err := database.SchemaVersion(cfg.DB.Path)
	if err != nil {
		l.Fatal("Failed to read schema version", zap.Error(err))
	}
	l.Info("Schema up to date",
		zap.String("path", cfg.DB.Path),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
}
