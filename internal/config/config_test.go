package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.SiteURL)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "./web/templates", cfg.TemplatesDir)

	opts := cfg.Options()
	assert.Equal(t, 30, opts.PostsPerPage)
	assert.Equal(t, 10, opts.ImportanceBaseline)
	assert.Equal(t, 5, opts.BoostCost)
	assert.Equal(t, time.Minute, opts.RankRefreshInterval)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9000")
	t.Setenv("SITE_URL", "https://news.example.org/")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "nuncio-test.db")
	t.Setenv("POSTS_PER_PAGE", "12")
	t.Setenv("BOOST_COST", "2")
	t.Setenv("RANK_REFRESH_INTERVAL", "30s")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "https://news.example.org", cfg.SiteURL)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "nuncio-test.db", cfg.DatabaseURL)
	assert.Equal(t, 12, cfg.PostsPerPage)
	assert.Equal(t, 2, cfg.BoostCost)
	assert.Equal(t, 30*time.Second, cfg.RankRefreshInterval)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")

	_, err := load(viper.New())
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Env:                 "development",
			Port:                "8080",
			DBDriver:            "sqlite",
			SessionSecret:       defaultSessionSecret,
			PostsPerPage:        30,
			ImportanceBaseline:  10,
			BoostCost:           5,
			RankRefreshInterval: time.Minute,
		}
	}

	tests := []struct {
		name        string
		edit        func(c *Config)
		expectError bool
	}{
		{"valid development", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"zero page size", func(c *Config) { c.PostsPerPage = 0 }, true},
		{"zero baseline", func(c *Config) { c.ImportanceBaseline = 0 }, true},
		{"negative cost", func(c *Config) { c.BoostCost = -1 }, true},
		{"free boosts", func(c *Config) { c.BoostCost = 0 }, false},
		{"zero refresh interval", func(c *Config) { c.RankRefreshInterval = 0 }, true},
		{"production default secret", func(c *Config) { c.Env = "production" }, true},
		{"production custom secret", func(c *Config) {
			c.Env = "production"
			c.SessionSecret = "a-long-and-random-session-secret-value"
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.edit(&c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
