package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from process environment variables using `env` struct
// tags. Defaults come from `envDefault` tags, so a fresh checkout runs with
// zero configuration.
//
// Example:
//
//	type Config struct {
//	    HTTPPort  int    `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
//	    RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
