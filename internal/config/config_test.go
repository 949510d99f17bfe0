package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "ridepool", cfg.AppName)
	require.Equal(t, "https://api.ridepool.app/", cfg.API.BaseURL)
	require.Equal(t, 10*time.Second, cfg.API.Timeout)
	require.Equal(t, BackendFile, cfg.Storage.Backend)
	require.True(t, cfg.Buffer.Enabled)
	require.Equal(t, 30*time.Second, cfg.Buffer.SyncInterval)
	require.Equal(t, 3, cfg.Buffer.MaxRetry)
	require.Zero(t, cfg.Refresh.Interval)
	require.Equal(t, "console", cfg.Logger.Encoding)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:8000/")
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("STORAGE_BACKEND", BackendRedis)
	t.Setenv("REDIS_URL", "redis://cache:6379")
	t.Setenv("BUFFER_ENABLED", "false")
	t.Setenv("SYNC_INTERVAL_SECONDS", "60")
	t.Setenv("AUTO_REFRESH_INTERVAL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8000/", cfg.API.BaseURL)
	require.Equal(t, 5*time.Second, cfg.API.Timeout)
	require.Equal(t, BackendRedis, cfg.Storage.Backend)
	require.Equal(t, "redis://cache:6379", cfg.Redis.URL)
	require.False(t, cfg.Buffer.Enabled)
	require.Equal(t, time.Minute, cfg.Buffer.SyncInterval)
	require.Equal(t, 2*time.Minute, cfg.Refresh.Interval)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "sqlite")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "sqlite")
}

func TestGetDurationAcceptsBareSeconds(t *testing.T) {
	t.Setenv("SYNC_INTERVAL_SECONDS", "45")
	require.Equal(t, 45*time.Second, getDuration("SYNC_INTERVAL_SECONDS", time.Second))

	t.Setenv("SYNC_INTERVAL_SECONDS", "garbage")
	require.Equal(t, time.Second, getDuration("SYNC_INTERVAL_SECONDS", time.Second))
}
