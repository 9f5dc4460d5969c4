package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8010, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 5, cfg.SalePollInterval)
	assert.Equal(t, 24, cfg.SessionIdleTTL)
	assert.Empty(t, cfg.PushServiceURL)
	assert.Empty(t, cfg.AdminToken)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "9090")
	t.Setenv("SALE_POLL_INTERVAL_SECONDS", "2")
	t.Setenv("PUSH_SERVICE_URL", "http://push.internal:8080")
	t.Setenv("ADMIN_API_TOKEN", "secret-token")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 2, cfg.SalePollInterval)
	assert.Equal(t, "http://push.internal:8080", cfg.PushServiceURL)
	assert.Equal(t, "secret-token", cfg.AdminToken)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port too low", "STOREFRONT_HTTP_PORT", "0"},
		{"port too high", "STOREFRONT_HTTP_PORT", "70000"},
		{"zero poll interval", "SALE_POLL_INTERVAL_SECONDS", "0"},
		{"zero idle ttl", "SESSION_IDLE_TTL_HOURS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
