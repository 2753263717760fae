package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signage.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
timezone = "Europe/Berlin"

[http]
port = "9090"

[database]
host = "db.internal"
name = "screens"

[auth]
device_jwt_ttl = "720h"

[assets]
backend = "remote"
remote_url = "https://blobs.example.com"
`), 0o644))

	t.Setenv("DB_HOST", "override.internal")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, "override.internal", cfg.Database.Host)
	assert.Equal(t, "screens", cfg.Database.DBName)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 720*time.Hour, cfg.Auth.DeviceJWTTTL.Std())
	assert.Equal(t, "remote", cfg.Assets.Backend)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "signage:checkins", cfg.Redis.Stream)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsReleaseWithoutSecret(t *testing.T) {
	cfg := Default()
	cfg.HTTP.Release = true
	assert.Error(t, cfg.Validate())

	cfg.Auth.DeviceJWTSecret = "s3cret"
	assert.NoError(t, cfg.Validate())

	cfg.Assets.Backend = "ftp"
	assert.Error(t, cfg.Validate())
}

func TestParseTimeInTimezone(t *testing.T) {
	require.NoError(t, InitializeTimezone("Asia/Kathmandu"))
	defer func() { AppLocation = time.UTC }()

	naive, err := ParseTimeInTimezone("2026-03-01 10:00")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01T04:15:00Z", naive.UTC().Format(time.RFC3339))

	explicit, err := ParseTimeInTimezone("2026-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 10, explicit.UTC().Hour())

	_, err = ParseTimeInTimezone("yesterday")
	assert.Error(t, err)
}
