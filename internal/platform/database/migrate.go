package database

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"

	"censusdesk/migrations"
)

// Migrate applies every pending migration embedded in the migrations package.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return MigrateFS(ctx, db, migrations.FS, logger)
}

// MigrateFS applies pending goose migrations found at the root of fsys.
func MigrateFS(ctx context.Context, db *sql.DB, fsys fs.FS, logger *slog.Logger) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	if logger != nil {
		for _, r := range results {
			logger.InfoContext(ctx, "migration applied",
				"version", r.Source.Version,
				"file", r.Source.Path,
				"duration", r.Duration,
			)
		}
	}
	return nil
}
