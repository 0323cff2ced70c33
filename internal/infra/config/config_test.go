package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE", "")
	t.Setenv("USERS_FIXTURES", "")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	require.Equal(t, StorageMemory, cfg.Storage)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 1000, cfg.MessageMaxLength)
	require.Equal(t, 10, cfg.FlaggedPageLimit)
	require.Equal(t, []time.Duration{time.Second, 5 * time.Second, 30 * time.Second}, cfg.RetryBackoff)
	require.False(t, cfg.KafkaEnabled())
	require.Empty(t, cfg.UsersFixtures)
}

func TestLoadMongoRequiresURI(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORAGE", "mongo")
	t.Setenv("MONGO_URI", "")

	_, err := Load("testdata/missing.env")
	require.ErrorContains(t, err, "MONGO_URI")
}

func TestLoadParsesBrokersAndLimits(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("MESSAGE_MAX_LENGTH", "500")
	t.Setenv("BAN_CACHE_TTL", "30s")
	t.Setenv("USERS_FIXTURES", "fixtures/users.json")

	cfg, err := Load("testdata/missing.env")
	require.NoError(t, err)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.KafkaEnabled())
	require.Equal(t, 500, cfg.MessageMaxLength)
	require.Equal(t, 30*time.Second, cfg.BanCacheTTL)
	require.Equal(t, "fixtures/users.json", cfg.UsersFixtures)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("IDEMP_TTL", "soon")

	_, err := Load("testdata/missing.env")
	require.ErrorContains(t, err, "IDEMP_TTL")
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("testdata/missing.env")
	require.ErrorContains(t, err, "JWT_SECRET")
}
