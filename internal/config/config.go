// Package config loads server settings from the environment, an optional
// `.env` file and an optional YAML file, in that order of precedence.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/wichananm65/recipe-costing-backend/internal/cost"
)

// Config holds environment-driven configuration.
type Config struct {
	Environment string         `mapstructure:"environment"`
	Debug       bool           `mapstructure:"debug"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Products    ProductsConfig `mapstructure:"products"`
	Cost        CostConfig     `mapstructure:"cost"`
	Auth        AuthConfig     `mapstructure:"auth"`
	Logging     LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// DatabaseConfig points at Postgres. An empty URL runs the API on in-memory
// repositories.
type DatabaseConfig struct {
	URL         string `mapstructure:"url"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type ProductsConfig struct {
	MaxVendors int `mapstructure:"max_vendors"`
}

type CostConfig struct {
	CurrencySymbol       string `mapstructure:"currency_symbol"`
	DecimalPlaces        int    `mapstructure:"decimal_places"`
	UnitMode             string `mapstructure:"unit_mode"`
	MissingProductPolicy string `mapstructure:"missing_product_policy"`
}

// AuthConfig enables bearer-token checks on mutating routes when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

const maxDecimalPlaces = 8

var envBindings = map[string][]string{
	"environment":                 {"APP_ENV", "NODE_ENV"},
	"debug":                       {"DEBUG_MODE"},
	"server.port":                 {"SERVER_PORT"},
	"database.url":                {"DATABASE_URL"},
	"database.auto_migrate":       {"AUTO_MIGRATE"},
	"products.max_vendors":        {"MAX_VENDORS_PER_PRODUCT"},
	"cost.currency_symbol":        {"CURRENCY_SYMBOL"},
	"cost.decimal_places":         {"PRICE_DECIMAL_PLACES"},
	"cost.unit_mode":              {"COST_UNIT_MODE"},
	"cost.missing_product_policy": {"COST_MISSING_PRODUCT_POLICY"},
	"auth.jwt_secret":             {"JWT_SECRET"},
	"logging.level":               {"LOG_LEVEL"},
	"logging.format":              {"LOG_FORMAT"},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("debug", false)
	v.SetDefault("server.port", 3001)
	v.SetDefault("database.url", "")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("products.max_vendors", 10)
	v.SetDefault("cost.currency_symbol", cost.DefaultCurrencySymbol)
	v.SetDefault("cost.decimal_places", cost.DefaultDecimalPlaces)
	v.SetDefault("cost.unit_mode", string(cost.UnitModeCorrected))
	v.SetDefault("cost.missing_product_policy", string(cost.Lenient))
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Load reads `.env` if present, then the YAML file at path when path is not
// empty, then environment variables, and validates the result.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Products.MaxVendors <= 0 {
		return fmt.Errorf("max vendors per product must be positive, got %d", c.Products.MaxVendors)
	}
	if c.Cost.DecimalPlaces < 0 || c.Cost.DecimalPlaces > maxDecimalPlaces {
		return fmt.Errorf("price decimal places must be between 0 and %d, got %d", maxDecimalPlaces, c.Cost.DecimalPlaces)
	}
	if _, err := cost.ParseUnitMode(c.Cost.UnitMode); err != nil {
		return err
	}
	if _, err := cost.ParsePolicy(c.Cost.MissingProductPolicy); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Engine builds the cost engine described by the cost settings. Call Validate
// first; unparsable values fall back to the defaults.
func (c CostConfig) Engine() *cost.Engine {
	mode, err := cost.ParseUnitMode(c.UnitMode)
	if err != nil {
		mode = cost.UnitModeCorrected
	}
	policy, err := cost.ParsePolicy(c.MissingProductPolicy)
	if err != nil {
		policy = cost.Lenient
	}
	return cost.NewEngine(cost.WithUnitTable(cost.UnitTableFor(mode)), cost.WithPolicy(policy))
}

// Formatter returns the configured currency presentation.
func (c CostConfig) Formatter() cost.Formatter {
	return cost.Formatter{Symbol: c.CurrencySymbol, Places: int32(c.DecimalPlaces)}
}
