package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fr0stylo/hookbox/internal/config"
	"github.com/fr0stylo/hookbox/internal/db"
)

// openDatabase never migrates; schema changes go through "hookctl migrate".
func openDatabase() (*db.Database, error) {
	cfg, err := config.LoadForTool()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return db.Open(db.Options{
		Driver:         db.Driver(cfg.Database.Driver),
		Path:           cfg.Database.Path,
		DSN:            cfg.Database.DSN,
		SkipMigrations: true,
	})
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|status|down]",
		Short:     "Manage the message database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "status", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			database, err := openDatabase()
			if err != nil {
				return err
			}
			defer database.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			switch action {
			case "up":
				results, err := database.MigrateUp(ctx)
				if err != nil {
					return fmt.Errorf("migrate up: %w", err)
				}
				if len(results) == 0 {
					fmt.Fprintln(out, "schema is up to date")
				}
				for _, result := range results {
					fmt.Fprintf(out, "applied %s (%s)\n", result.Source.Path, result.Duration)
				}
			case "down":
				result, err := database.MigrateDown(ctx)
				if err != nil {
					return fmt.Errorf("migrate down: %w", err)
				}
				fmt.Fprintf(out, "rolled back %s (%s)\n", result.Source.Path, result.Duration)
			case "status":
				statuses, err := database.MigrationStatus(ctx)
				if err != nil {
					return fmt.Errorf("migration status: %w", err)
				}
				for _, status := range statuses {
					fmt.Fprintf(out, "%-8s %s\n", status.State, status.Source.Path)
				}
			}
			return nil
		},
	}
}
