package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"gestorbanco/internal/config"
	"gestorbanco/internal/db"
)

func main() {
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 1, "migrations to roll back with -down")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("read .env", "error", err)
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *down {
		if err := db.MigrateDown(cfg.DatabaseURL, *steps); err != nil {
			logger.Error("migrate down failed", "error", err)
			os.Exit(1)
		}
		logger.Info("rolled back", "steps", *steps)
		return
	}
	version, err := db.MigrateUp(cfg.DatabaseURL)
	if err != nil {
		logger.Error("migrate up failed", "error", err)
		os.Exit(1)
	}
	logger.Info("schema up to date", "version", version)
}
