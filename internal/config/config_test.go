package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proby/internal/models"
	"proby/internal/store"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, store.DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, 50, cfg.ReadingsLimit)
	assert.Equal(t, models.DefaultSchema, cfg.Schema)
	assert.Equal(t, "proby.db", cfg.DSN())
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadServerFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://proby@localhost/proby")
	t.Setenv("READINGS_LIMIT", "0")
	t.Setenv("SENSOR_FIELDS", "microbial_activity")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("REDIS_DB", "not-a-number")

	cfg, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "postgres://proby@localhost/proby", cfg.DSN())
	assert.Equal(t, 0, cfg.ReadingsLimit)
	assert.Equal(t, models.Schema{models.FieldMicrobialActivity}, cfg.Schema)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 0, cfg.RedisDB, "invalid ints fall back to default")
}

func TestLoadServerErrors(t *testing.T) {
	t.Run("postgres_without_dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		_, err := LoadServer()
		assert.ErrorIs(t, err, errMissingDSN)
	})

	t.Run("unknown_driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := LoadServer()
		assert.ErrorIs(t, err, store.ErrUnknownDriver)
	})

	t.Run("unknown_field", func(t *testing.T) {
		t.Setenv("SENSOR_FIELDS", "temperature,co2")
		_, err := LoadServer()
		assert.ErrorIs(t, err, models.ErrUnknownField)
	})
}

func TestLoadDashboard(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("PAUSE_AFTER", "7")

	cfg, err := LoadDashboard()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 7, cfg.PauseAfter)
	assert.Equal(t, 3, cfg.ConnectAfter)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.Empty(t, cfg.MetricsAddr)

	t.Setenv("METRICS_ADDR", ":9091")
	t.Setenv("READINGS_LIMIT", "0")
	cfg, err = LoadDashboard()
	require.NoError(t, err)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, 0, cfg.ReadingsLimit)

	t.Setenv("POLL_INTERVAL", "-1s")
	_, err = LoadDashboard()
	assert.ErrorIs(t, err, errInvalidInterval)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SIM_COUNT=12\nSIM_INTERVAL=100ms\n"), 0o600))

	t.Setenv("SIM_COUNT", "")
	t.Setenv("SIM_INTERVAL", "")
	os.Unsetenv("SIM_COUNT")
	os.Unsetenv("SIM_INTERVAL")

	LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env"))

	cfg, err := LoadSimulator()
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Count)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval)
}
