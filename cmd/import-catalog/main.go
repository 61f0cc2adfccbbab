// Command import-catalog replaces the stored catalog with the contents of a
// JSON dump. It is intended to run as a scheduled job.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"figurevault/internal/config"
	"figurevault/internal/database"
	"figurevault/internal/importer"
	"figurevault/internal/logging"
)

func main() {
	source := flag.String("source", "", "Catalog dump URL or file path (defaults to IMPORT_SOURCE_URL)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Overall import timeout")

	cfg := config.Load()

	level := logging.LevelInfo
	if cfg.Logging.Level == "debug" {
		level = logging.LevelDebug
	}
	logger := logging.New(level)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.New(database.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		Database: cfg.Database.Database,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Error("Failed to connect to database", logging.WithField("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("Failed to run migrations", logging.WithField("error", err.Error()))
		os.Exit(1)
	}

	imp := importer.New(database.NewCatalogStore(db), cfg.Import, logger)

	var result *importer.Result
	if *source != "" {
		result, err = imp.RunFrom(ctx, *source)
	} else {
		result, err = imp.Run(ctx)
	}
	if err != nil {
		logger.Error("Import failed", logging.WithField("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Import finished", logging.WithFields(map[string]interface{}{
		"total":   result.Total,
		"skipped": result.Skipped,
	}))
}
