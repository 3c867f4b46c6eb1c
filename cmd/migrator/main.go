package main

import (
	"context"
	"flag"
	"log"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"

	"github.com/UnknownOlympus/roster-console/internal/config"
	"github.com/UnknownOlympus/roster-console/internal/repository"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (defaults to $CONFIG_PATH)")
	dir := flag.String("dir", "migrations", "directory with the migration files")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	if !cfg.Postgres.Configured() {
		log.Fatal("postgres is not configured, set postgres.host and postgres.db_name")
	}

	dbpool, dbErr := repository.NewDatabase(context.Background(), cfg.Postgres)
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	dtb := stdlib.OpenDBFromPool(dbpool)
	if migrationErr := goose.Up(dtb, *dir); migrationErr != nil {
		log.Fatal(migrationErr) //nolint:gocritic // the pool is released on exit
	}

	log.Println("✅ Migrations applied successfully")
}
