//go:build unit

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		t.Setenv("PORT", "9000")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
		assert.Equal(t, StoreDriverPostgres, cfg.DB.Driver)
		assert.False(t, cfg.DB.Migrate)
		assert.Empty(t, cfg.Business.TimeZone)
		assert.False(t, cfg.Redis.RateLimitEnabled())
		assert.Empty(t, cfg.JWT.Secret)
	})

	t.Run("values from env file", func(t *testing.T) {
		dir := t.TempDir()
		envFile := filepath.Join(dir, "test.env")
		require.NoError(t, os.WriteFile(envFile, []byte("PORT=7000\nSTORE_DRIVER=memory\nBUSINESS_TIMEZONE=Europe/Madrid\n"), 0o600))
		t.Setenv("ENV_FILE", envFile)
		// godotenv never overrides variables that are already set
		t.Setenv("PORT", "")
		os.Unsetenv("PORT")
		t.Setenv("STORE_DRIVER", "")
		os.Unsetenv("STORE_DRIVER")
		t.Setenv("BUSINESS_TIMEZONE", "")
		os.Unsetenv("BUSINESS_TIMEZONE")

		cfg, err := LoadConfig()
		require.NoError(t, err)

		assert.Equal(t, "7000", cfg.Server.Port)
		assert.Equal(t, StoreDriverMemory, cfg.DB.Driver)
		loc, err := cfg.Business.Location()
		require.NoError(t, err)
		assert.Equal(t, "Europe/Madrid", loc.String())
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		t.Setenv("PORT", "9000")
		t.Setenv("STORE_DRIVER", "mongo")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("bad business timezone", func(t *testing.T) {
		t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
		t.Setenv("PORT", "9000")
		t.Setenv("BUSINESS_TIMEZONE", "Mars/Olympus")

		_, err := LoadConfig()
		assert.ErrorContains(t, err, "BUSINESS_TIMEZONE")
	})
}

func TestBusinessConfig_Location(t *testing.T) {
	loc, err := BusinessConfig{}.Location()
	require.NoError(t, err)
	assert.Nil(t, loc)
}
