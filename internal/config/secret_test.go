package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"helpdesk/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateSecret_GeneratesAndPersists(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "helpdesk.env")

	secret, created, err := config.LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, secret, 128) // 64 bytes, hex encoded

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "JWT_SECRET="+secret)

	again, created, err := config.LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, secret, again)
}

func TestLoadOrCreateSecret_KeepsOtherKeys(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	path := filepath.Join(t.TempDir(), "app.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_ENV=test\n"), 0o644))

	secret, created, err := config.LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "APP_ENV=test")
	assert.Contains(t, string(data), "JWT_SECRET="+secret)
}

func TestLoadOrCreateSecret_EnvironmentWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	path := filepath.Join(t.TempDir(), "unused.env")

	secret, created, err := config.LoadOrCreateSecret(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "from-env", secret)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JWT_SECRET", "")
	t.Setenv("SECRET_FILE", filepath.Join(dir, "secret.env"))
	t.Setenv("DATA_DIR", dir)
	t.Setenv("STORAGE_DRIVER", "SQLite")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":3872", cfg.Port)
	assert.Equal(t, config.StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, filepath.Join(dir, "helpdesk.db"), cfg.DatabaseDSN)
	assert.Equal(t, filepath.Join(dir, "accounts.json"), cfg.AccountsFile())
	assert.Equal(t, 14, cfg.BcryptCost)
	assert.Len(t, cfg.JWTSecret, 128)

	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err = config.Load()
	assert.Error(t, err)
}
