package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the API server.
type Config struct {
	AppEnv          string        `envconfig:"APP_ENV" default:"development"`
	AppAddr         string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout  time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppIdleTimeout  time.Duration `envconfig:"APP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"APP_SHUTDOWN_TIMEOUT" default:"30s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	AuditEnabled bool `envconfig:"AUDIT_ENABLED" default:"true"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment returns true when the application runs in development.
func (c *Config) IsDevelopment() bool {
	return c != nil && c.AppEnv == "development"
}
