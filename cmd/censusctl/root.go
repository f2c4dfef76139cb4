package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"censusdesk/internal/app"
	"censusdesk/internal/platform/config"
	"censusdesk/internal/platform/logger"
)

var errNoDatabase = errors.New("DATABASE_URL is required for this command")

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "censusctl",
		Short:         "Operator tools for the census record service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedAdminCmd())
	cmd.AddCommand(newSeedDemoCmd())
	cmd.AddCommand(newTokenCmd())
	cmd.AddCommand(newExportCmd())
	return cmd
}

// openApp builds the application against the configured backends. Commands
// that change or read persisted data need Postgres.
func openApp(ctx context.Context, needDatabase bool) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if needDatabase && cfg.Database.URL == "" {
		return nil, errNoDatabase
	}
	return app.Build(ctx, cfg, logger.New(cfg.LogLevel))
}
