package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/wichananm65/recipe-costing-backend/internal/config"
	"github.com/wichananm65/recipe-costing-backend/internal/database"
	"github.com/wichananm65/recipe-costing-backend/internal/product"
	"github.com/wichananm65/recipe-costing-backend/internal/recipe"
	"github.com/wichananm65/recipe-costing-backend/internal/router"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API. With DATABASE_URL set, products and recipes are stored
in Postgres and pending migrations are applied on start unless AUTO_MIGRATE is
false. Without it, the API runs on in-memory storage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *rootOptions) error {
	cfg, logger, err := opts.load()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, products, recipes, err := buildServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close database", zap.String("op", "serve"), zap.Error(err))
				return
			}
			logger.Info("database connection pool closed", zap.String("op", "serve"))
		}()
	}

	app := router.New(router.Deps{Config: cfg, Logger: logger, Products: products, Recipes: recipes})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr())
	}()
	logger.Info("server started",
		zap.String("op", "serve"),
		zap.String("addr", cfg.Addr()),
		zap.String("environment", cfg.Environment),
		zap.Bool("postgres", db != nil),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutdown signal received: closing HTTP server", zap.String("op", "serve"))
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildServices wires the product and recipe services to Postgres when a
// database URL is configured, and to in-memory repositories otherwise.
func buildServices(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*sql.DB, *product.Service, *recipe.Service, error) {
	var (
		db          *sql.DB
		productRepo product.Repository
		recipeRepo  recipe.Repository
	)

	if cfg.Database.URL == "" {
		logger.Warn("DATABASE_URL is not set; using in-memory storage", zap.String("op", "serve"))
		productRepo = product.NewInMemoryRepository(nil)
		recipeRepo = recipe.NewInMemoryRepository(nil)
	} else {
		var err error
		db, err = database.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				_ = db.Close()
				return nil, nil, nil, err
			}
		}
		productRepo = product.NewPostgresRepository(db)
		recipeRepo = recipe.NewPostgresRepository(db)
	}

	products := product.NewService(productRepo, cfg.Products.MaxVendors)
	recipes := recipe.NewService(recipeRepo, products, cfg.Cost.Engine(), cfg.Cost.Formatter(), logger)
	return db, products, recipes, nil
}
