package main

import (
	"context"
	"os"

	"inventory-api/internal/config"
	"inventory-api/internal/db"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Applies a migration file to the configured database.
// Usage: migrate [path/to/file.sql] (defaults to migrations/001_init.sql)
func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	path := "migrations/001_init.sql"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL())
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer pool.Close()

	sqlFile, err := os.ReadFile(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("failed to read migration file")
	}

	if _, err := pool.Exec(ctx, string(sqlFile)); err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("migration failed")
	}
	log.Info().Str("file", path).Msg("migration applied")
}
