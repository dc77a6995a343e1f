// Package config loads server settings from .env, config.yml and the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"nuncio/internal/services"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultSessionSecret = "secret_key_change_me"

type Config struct {
	Env           string `mapstructure:"APP_ENV"`
	Port          string `mapstructure:"PORT"`
	SiteURL       string `mapstructure:"SITE_URL"`
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	TemplatesDir  string `mapstructure:"TEMPLATES_DIR"`
	StaticDir     string `mapstructure:"STATIC_DIR"`

	PostsPerPage        int           `mapstructure:"POSTS_PER_PAGE"`
	ImportanceBaseline  int           `mapstructure:"IMPORTANCE_BASELINE"`
	BoostCost           int           `mapstructure:"BOOST_COST"`
	RankRefreshInterval time.Duration `mapstructure:"RANK_REFRESH_INTERVAL"`
}

// Load reads .env (if present) into the environment, then resolves every
// setting from the environment, an optional config.yml and the defaults, in
// that order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config.yml: %w", err)
		}
	}

	opts := services.DefaultOptions()
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("TEMPLATES_DIR", "./web/templates")
	v.SetDefault("STATIC_DIR", "./web/static")
	v.SetDefault("POSTS_PER_PAGE", opts.PostsPerPage)
	v.SetDefault("IMPORTANCE_BASELINE", opts.ImportanceBaseline)
	v.SetDefault("BOOST_COST", opts.BoostCost)
	v.SetDefault("RANK_REFRESH_INTERVAL", opts.RankRefreshInterval)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
	return &cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.PostsPerPage <= 0 {
		return errors.New("POSTS_PER_PAGE must be positive")
	}
	if c.ImportanceBaseline <= 0 {
		return errors.New("IMPORTANCE_BASELINE must be positive")
	}
	if c.BoostCost < 0 {
		return errors.New("BOOST_COST cannot be negative")
	}
	if c.RankRefreshInterval <= 0 {
		return errors.New("RANK_REFRESH_INTERVAL must be positive")
	}

	if c.IsProduction() && c.SessionSecret == defaultSessionSecret {
		return errors.New("SESSION_SECRET must be changed from the default value in production")
	}
	if len(c.SessionSecret) < 32 {
		log.Println("WARNING: SESSION_SECRET is shorter than 32 characters")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Options returns the forum policy described by the config.
func (c *Config) Options() services.Options {
	return services.Options{
		PostsPerPage:        c.PostsPerPage,
		ImportanceBaseline:  c.ImportanceBaseline,
		BoostCost:           c.BoostCost,
		RankRefreshInterval: c.RankRefreshInterval,
	}
}
