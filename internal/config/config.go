// Package config loads server configuration from the environment.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/greyhelm/vtt-api/internal/errors"
)

// Config holds everything the server binary needs to start.
type Config struct {
	HTTPPort int `env:"HTTP_PORT" envDefault:"8080"`

	RedisAddr         string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisMinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	RedisMaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	RedisConnMaxIdle  time.Duration `env:"REDIS_CONN_MAX_IDLE" envDefault:"5m"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges the env tags cannot express.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		vb.Field("HTTPPort", "must be between 1 and 65535")
	}
	if c.RedisAddr == "" {
		vb.RequiredField("RedisAddr")
	}

	return vb.Build()
}
