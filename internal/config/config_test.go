package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "")
		t.Setenv("ENTERPRISE_ENABLED", "")
		t.Setenv("ENTERPRISE_QUERY_CACHING", "")
		t.Setenv("AUDIT_TABLE_CACHE_TTL_SECONDS", "")
		t.Setenv("REDIS_ENABLED", "")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.Equal(t, config.BackendMemory, cfg.Storage.Backend)
		assert.False(t, cfg.Enterprise.CacheTTLFieldEnabled())
		assert.Equal(t, time.Minute, cfg.Audit.TableCacheTTL())
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("enterprise caching", func(t *testing.T) {
		t.Setenv("ENTERPRISE_ENABLED", "true")
		t.Setenv("ENTERPRISE_QUERY_CACHING", "1")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.True(t, cfg.Enterprise.CacheTTLFieldEnabled())
	})

	t.Run("caching without enterprise stays off", func(t *testing.T) {
		t.Setenv("ENTERPRISE_ENABLED", "false")
		t.Setenv("ENTERPRISE_QUERY_CACHING", "true")

		cfg, err := config.Load()
		require.NoError(t, err)
		assert.False(t, cfg.Enterprise.CacheTTLFieldEnabled())
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "sqlite")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		t.Setenv("STORAGE_BACKEND", "postgres")
		t.Setenv("POSTGRES_DSN", "")

		_, err := config.Load()
		assert.Error(t, err)
	})

	t.Run("invalid redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "zero")

		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDurations(t *testing.T) {
	assert.Equal(t, 5*time.Second, config.AppConfig{RequestTimeoutSeconds: 5}.RequestTimeout())
	assert.Zero(t, config.AppConfig{}.RequestTimeout())
	assert.Zero(t, config.AuditConfig{TableCacheTTLSeconds: -1}.TableCacheTTL())
	assert.Equal(t, "127.0.0.1:9000", config.AppConfig{Host: "127.0.0.1", Port: "9000"}.Addr())
}
