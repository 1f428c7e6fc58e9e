// Package config loads and validates the archiver configuration: YAML file,
// environment overrides, then command-line flags on top.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TokenEnv is the environment variable consulted for the auth token when the
// config file and flags leave it empty.
const TokenEnv = "SLACKDM_TOKEN"

// Date format selectors.
const (
	DateISO8601 = "iso8601"
	DateUK      = "uk"
)

// Config is the per-run configuration. One instance is built at startup and
// passed by reference into each component; nothing here mutates after Load.
type Config struct {
	Token      string `yaml:"token" validate:"required"`
	LogLevel   string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	DateFormat string `yaml:"dateFormat" validate:"oneof=iso8601 uk"`

	// Pagination knobs. Waits are the endpoint-tier backoffs applied after
	// a 429, in seconds.
	PageSize           int `yaml:"pageSize" validate:"gt=0,lte=1000"`
	HistoryWaitSeconds int `yaml:"historyWaitSeconds" validate:"gt=0"`
	ListWaitSeconds    int `yaml:"listWaitSeconds" validate:"gt=0"`

	// Output is the directory export artifacts are written into.
	Output string `yaml:"output"`
}

// Load reads the config file at path, applying defaults for anything unset.
// An empty path skips the file: the defaults plus the token environment
// variable are a complete configuration.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv(TokenEnv)
	}

	return cfg, nil
}

// Validate checks the assembled configuration. Called after flag overrides
// are applied, so a missing token is reported once, not per source.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DateLayout returns the Go time layout for the selected date format.
func (c *Config) DateLayout() string {
	if c.DateFormat == DateUK {
		return "02/01/2006"
	}
	return "2006-01-02"
}

// HistoryWait returns the rate-limit backoff for the history endpoint tier.
func (c *Config) HistoryWait() time.Duration {
	return time.Duration(c.HistoryWaitSeconds) * time.Second
}

// ListWait returns the rate-limit backoff for the list endpoint tier.
func (c *Config) ListWait() time.Duration {
	return time.Duration(c.ListWaitSeconds) * time.Second
}
