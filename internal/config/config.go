// internal/config/config.go
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel            string `mapstructure:"LOG_LEVEL"`
	DBURL               string `mapstructure:"DB_URL"`
	HTTPAddr            string `mapstructure:"HTTP_ADDR"`
	GithubUsername      string `mapstructure:"GITHUB_USERNAME"`
	GithubToken         string `mapstructure:"GITHUB_TOKEN"`
	SyncIntervalMinutes int    `mapstructure:"SYNC_INTERVAL_MINUTES"`
}

// SyncInterval returns the configured interval as a duration.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}

// LoadConfig reads configuration from file and/or environment variables.
func LoadConfig() (*Config, error) {
	// Set default values
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("SYNC_INTERVAL_MINUTES", 30)

	// Load from .env file if it exists
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	_ = viper.ReadInConfig() // Ignore error if file not found

	// Bind environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate required fields. The token is optional: unauthenticated
	// requests work against public data, only with a lower rate limit.
	if cfg.DBURL == "" {
		return nil, errors.New("DB_URL is a required configuration field")
	}
	if cfg.GithubUsername == "" {
		return nil, errors.New("GITHUB_USERNAME is a required configuration field")
	}
	if cfg.SyncIntervalMinutes <= 0 {
		return nil, errors.New("SYNC_INTERVAL_MINUTES must be a positive integer")
	}

	return &cfg, nil
}
