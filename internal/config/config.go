// Package config loads console settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Prefix is prepended to every environment variable the console reads.
const Prefix = "ARMADA_"

// Config is the console's runtime configuration.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	API         struct {
		BaseURL string `env:"BASE_URL,required"`
		Timeout int    `env:"TIMEOUT" envDefault:"12"`
	} `envPrefix:"API_"`
	Server struct {
		Listen          string `env:"LISTEN" envDefault:"127.0.0.1:4173"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Session struct {
		CookieName  string `env:"COOKIE_NAME" envDefault:"armada_admin"`
		TTLHours    int    `env:"TTL_HOURS" envDefault:"336"` // 14 days
		MaxSessions int    `env:"MAX_SESSIONS" envDefault:"256"`
	} `envPrefix:"SESSION_"`
	Log struct {
		Level string `env:"LEVEL" envDefault:"info"`
		// Dir enables a rotating log file next to stdout when set.
		Dir      string `env:"DIR"`
		MaxMB    int    `env:"MAX_MB" envDefault:"10"`
		MaxFiles int    `env:"MAX_FILES" envDefault:"5"`
	} `envPrefix:"LOG_"`
}

// APITimeout is the per-request timeout for backend calls.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.Timeout) * time.Second
}

// SessionTTL is how long the login flow keeps the identity cookie.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

// Load reads envFile when it exists, then parses the environment.
// Variables already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	envFile = strings.TrimSpace(envFile)
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat %s: %w", envFile, err)
		}
	}

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: Prefix}); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	cfg.API.BaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.API.BaseURL), "/")
	if cfg.Session.MaxSessions <= 0 {
		return nil, errors.New("session max sessions must be positive")
	}
	return cfg, nil
}
