package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wichananm65/recipe-costing-backend/internal/config"
	"github.com/wichananm65/recipe-costing-backend/internal/logging"
	"github.com/wichananm65/recipe-costing-backend/internal/router"
	"go.uber.org/zap"
)

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "recipe-costing",
		Short: "Recipe costing API and tools",
		Long: `recipe-costing serves the product and recipe API and prices recipes
from the default vendor offer of each ingredient.

Settings come from the environment (or a .env file) and, optionally, a YAML
file given with --config.`,
		Version:       router.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML configuration file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newCostCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

// load reads configuration and builds the logger shared by every command.
func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.New(cfg.Logging, o.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
