// Package config loads recipebook settings from a YAML file overlaid with
// environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables read by Load. DATABASE_URL is honoured when the
// prefixed variable is unset.
const (
	EnvDatabaseURL  = "RECIPEBOOK_DATABASE_URL"
	EnvListenAddr   = "RECIPEBOOK_LISTEN_ADDR"
	EnvLogLevel     = "RECIPEBOOK_LOG_LEVEL"
	EnvAllowOrigins = "RECIPEBOOK_ALLOW_ORIGINS"
)

// ErrMissingDatabaseURL is returned when no connection string is configured.
var ErrMissingDatabaseURL = errors.New("database url is not configured")

// Config represents the application configuration.
type Config struct {
	DatabaseURL  string   `yaml:"database_url"`
	ListenAddr   string   `yaml:"listen_addr"`
	LogLevel     string   `yaml:"log_level"`
	AllowOrigins []string `yaml:"allow_origins"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		LogLevel:     "info",
		AllowOrigins: []string{"http://localhost:8081"},
	}
}

// Load reads path (a missing file is not an error, an empty path skips the
// file) and then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()

	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.DatabaseURL = v
	} else if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvAllowOrigins); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) > 0 {
			c.AllowOrigins = origins
		}
	}
}
