package config

import (
	"fmt"

	pkgconfig "github.com/flashmart/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`

	// Redis (authoritative sale-state store)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Sale poll interval in seconds
	SalePollInterval int `env:"SALE_POLL_INTERVAL_SECONDS" envDefault:"5"`

	// Session carts idle out after this many hours
	SessionIdleTTL int `env:"SESSION_IDLE_TTL_HOURS" envDefault:"24"`

	// Push delivery service. An empty URL disables push support.
	PushServiceURL   string `env:"PUSH_SERVICE_URL" envDefault:""`
	SubscribeTimeout int    `env:"NOTIFY_SUBSCRIBE_TIMEOUT_SECONDS" envDefault:"10"`
	DispatchTimeout  int    `env:"NOTIFY_DISPATCH_TIMEOUT_SECONDS" envDefault:"15"`

	// Admin write path authorization token. Empty disables the admin surface.
	AdminToken string `env:"ADMIN_API_TOKEN" envDefault:""`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.SalePollInterval < 1 {
		return fmt.Errorf("invalid sale poll interval: %d", c.SalePollInterval)
	}
	if c.SessionIdleTTL < 1 {
		return fmt.Errorf("invalid session idle TTL: %d", c.SessionIdleTTL)
	}
	return nil
}
