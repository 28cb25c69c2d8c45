package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"HTTP_ADDR", "STORE", "POSTGRES_HOST", "REDIS_URL", "KAFKA_BROKERS", "STATS_CACHE_TTL", "CORS_ORIGINS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, StorePostgres, cfg.Store)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "quickpollscid", cfg.ClientIDCookie)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("STATS_CACHE_TTL", "2m")
	t.Setenv("POSTGRES_USER", "poll")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("POSTGRES_DB", "polls")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Minute, cfg.StatsCacheTTL)
	assert.Equal(t, "postgres://poll:secret@db:5433/polls?sslmode=disable", cfg.Postgres.ConnString())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		t.Setenv("STORE", "sqlite")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("ttl", func(t *testing.T) {
		t.Setenv("STATS_CACHE_TTL", "soon")
		_, err := Load()
		assert.Error(t, err)
	})
}
