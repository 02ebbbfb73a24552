// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the dashboard server configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8081"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"60s"`
	SourcesPath     string        `env:"SOURCES_PATH"`
	ViewsPath       string        `env:"VIEWS_PATH"`
	DataBaseURL     string        `env:"DATA_BASE_URL" envDefault:"./data"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	DatabaseURL     string        `env:"DATABASE_URL"`

	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`

	FetchTimeout    time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	FetchMaxRetries int           `env:"FETCH_MAX_RETRIES" envDefault:"3"`
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom parses environ instead of the process environment when non-nil.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RefreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be positive, got %s", cfg.RefreshInterval)
	}
	if cfg.FetchMaxRetries < 0 {
		return Config{}, fmt.Errorf("FETCH_MAX_RETRIES must not be negative")
	}
	return cfg, nil
}

// RegistryDefaults are the values substituted into sources.yaml when the
// environment does not set them.
func (c Config) RegistryDefaults() map[string]string {
	return map[string]string{"DATA_BASE_URL": c.DataBaseURL}
}
