package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wichananm65/recipe-costing-backend/internal/database"
	"go.uber.org/zap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Apply, roll back or inspect database migrations",
		Long: `Apply, roll back or inspect the embedded database migrations.

Examples:
  recipe-costing migrate
  recipe-costing migrate down --steps 1
  recipe-costing migrate version`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer func() {
				_ = logger.Sync()
			}()

			db, err := database.Open(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()

			switch action {
			case "up":
				if err := database.Migrate(db); err != nil {
					return err
				}
			case "down":
				if err := database.Rollback(db, steps); err != nil {
					return err
				}
			case "version":
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}

			version, dirty, err := database.Version(db)
			if err != nil {
				return err
			}
			logger.Info("schema version", zap.String("op", "migrate"), zap.String("action", action), zap.Uint("version", version), zap.Bool("dirty", dirty))
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back with down")
	return cmd
}
