package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"medicare-backend/migrations"
)

// ConnectDB opens the Postgres pool and verifies it with a ping.
func ConnectDB(ctx context.Context, cfg DatabaseConfig, logger zerolog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("DB connection error: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB ping error: %w", err)
	}

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Name).
		Int("max_open_conns", cfg.MaxOpenConns).
		Msg("connected to Postgres with connection pooling")
	return db, nil
}

func newMigrator() error {
	goose.SetBaseFS(migrations.FS)
	return goose.SetDialect("postgres")
}

// MigrateUp applies all pending embedded migrations.
func MigrateUp(db *sql.DB) error {
	if err := newMigrator(); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(db *sql.DB) error {
	if err := newMigrator(); err != nil {
		return err
	}
	if err := goose.Down(db, "."); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	return nil
}

func MigrationStatus(db *sql.DB) error {
	if err := newMigrator(); err != nil {
		return err
	}
	return goose.Status(db, ".")
}
