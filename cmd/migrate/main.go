package main

import (
	"context"
	"os"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/config"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/model"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/database"
)

func main() {
	cfg := config.Load()
	log := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer func() { _ = log.Sync() }()

	if cfg.Database.Connection == "" {
		log.Error("migrate", "DB_CONNECTION_STRING is not set", nil)
		os.Exit(1)
	}

	db, err := database.Open(cfg.Database.Connection, false, database.PoolConfig{
		MaxIdleConns:    1,
		MaxOpenConns:    1,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Error("migrate", "Failed to connect to database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	report, err := database.Migrate(context.Background(), db, &model.Document{}, &model.DocumentChunk{})
	if err != nil {
		log.Error("migrate", "Migration failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	for _, warning := range report.IndexWarnings {
		log.Warn("migrate", "Index creation skipped", map[string]interface{}{"error": warning.Error()})
	}

	log.Info("migrate", "Evidence schema is up to date", nil)
}
