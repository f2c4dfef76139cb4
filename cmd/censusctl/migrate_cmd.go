package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()

			start := time.Now()
			if err := a.Migrate(cmd.Context()); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"command":     "migrate",
				"duration_ms": time.Since(start).Milliseconds(),
			})
		},
	}
}
