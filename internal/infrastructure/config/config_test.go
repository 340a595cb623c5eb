package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.LoadFiles()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.JWTSecret)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, config.StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.StoreMaxRetries)
	assert.False(t, cfg.MigrateOnStart)
	assert.Equal(t, 0, cfg.RedisPoolSize)
	assert.Equal(t, 5*time.Second, cfg.RedisDialTimeout)
	assert.Equal(t, 3, cfg.RedisConnectAttempts)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.GSC.Enabled())
	assert.False(t, cfg.Live22.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("REDIS_POOL_SIZE", "40")
	t.Setenv("REDIS_CONNECT_ATTEMPTS", "5")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("MIGRATE_ON_START", "true")
	t.Setenv("EVENT_PUBLISHER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("GSC_OPERATOR_CODE", "OP1")
	t.Setenv("GSC_SECRET_KEY", "gsc-secret")
	t.Setenv("LIVE22_OPERATOR_ID", "L22")
	t.Setenv("LIVE22_SECRET_KEY", "l22-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.LoadFiles()
	require.NoError(t, err)

	assert.Equal(t, "postgres://example", cfg.DatabaseURL)
	assert.Equal(t, "redis://example", cfg.RedisURL)
	assert.Equal(t, 40, cfg.RedisPoolSize)
	assert.Equal(t, 5, cfg.RedisConnectAttempts)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 45*time.Second, cfg.DatabaseTimeout)
	assert.True(t, cfg.AuthEnabled)
	assert.Equal(t, config.StoreDriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.MigrateOnStart)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "OP1", cfg.GSC.OperatorCode)
	assert.True(t, cfg.GSC.Enabled())
	assert.Equal(t, "L22", cfg.Live22.OperatorID)
	assert.True(t, cfg.Live22.Enabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GSC_OPERATOR_CODE=from-file\nHTTP_PORT=7070\n"), 0o600))

	t.Setenv("HTTP_PORT", "6060")
	// godotenv.Load sets variables process-wide; undo after the test
	t.Cleanup(func() { os.Unsetenv("GSC_OPERATOR_CODE") })

	cfg, err := config.LoadFiles(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.GSC.OperatorCode)
	assert.Equal(t, "6060", cfg.HTTPPort, "real environment wins over .env")
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"unknown publisher", map[string]string{"EVENT_PUBLISHER": "nats"}},
		{"auth without secret", map[string]string{"AUTH_ENABLED": "true", "JWT_SECRET": ""}},
		{"negative retries", map[string]string{"STORE_MAX_RETRIES": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.LoadFiles()
			assert.Error(t, err)
		})
	}
}
