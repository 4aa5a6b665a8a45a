// Package router assembles the fiber application: middleware, the health and
// config endpoints, the product and recipe routes and the JSON error envelope.
package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/wichananm65/recipe-costing-backend/internal/auth"
	"github.com/wichananm65/recipe-costing-backend/internal/config"
	"github.com/wichananm65/recipe-costing-backend/internal/logging"
	"github.com/wichananm65/recipe-costing-backend/internal/product"
	"github.com/wichananm65/recipe-costing-backend/internal/recipe"
	"go.uber.org/zap"
)

// Version is reported by the health endpoint.
const Version = "2.0.0"

// Deps are the services the routes delegate to.
type Deps struct {
	Config   *config.Config
	Logger   *zap.Logger
	Products *product.Service
	Recipes  *recipe.Service
}

// New builds the HTTP application.
func New(d Deps) *fiber.App {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		AppName:      "Recipe Costing API v" + Version,
		ErrorHandler: errorHandler(logger, d.Config.Debug),
	})
	app.Use(logging.Middleware(logger, d.Config.Debug))
	setupCORS(app)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":     true,
			"message":     "Recipe Costing API v" + Version,
			"status":      "running",
			"environment": d.Config.Environment,
		})
	})

	api := app.Group("/api")
	api.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success": true,
			"data": fiber.Map{
				"maxVendors":         d.Products.MaxVendors(),
				"currencySymbol":     d.Config.Cost.CurrencySymbol,
				"priceDecimalPlaces": d.Config.Cost.DecimalPlaces,
			},
		})
	})

	productHandler := product.NewHandler(d.Products)
	recipeHandler := recipe.NewHandler(d.Recipes)

	productHandler.RegisterPublicRoutes(api)
	recipeHandler.RegisterPublicRoutes(api)

	guard := auth.Middleware(d.Config.Auth.JWTSecret)
	productHandler.RegisterProtectedRoutes(api, guard)
	recipeHandler.RegisterProtectedRoutes(api, guard)

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "Endpoint not found"})
	})
	return app
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + logging.RequestIDHeader,
	}))
}

// errorHandler renders errors no handler dealt with. Details of unexpected
// errors are only exposed in debug mode.
func errorHandler(logger *zap.Logger, debug bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		} else {
			logger.Error("unhandled error",
				zap.String("op", "router.errorHandler"),
				zap.String("request_id", logging.RequestID(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		body := fiber.Map{"success": false, "error": message}
		if debug && fe == nil {
			body["details"] = err.Error()
		}
		return c.Status(code).JSON(body)
	}
}
