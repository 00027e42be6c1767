package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("VITE_API_URL", "")
	require.NoError(t, os.Unsetenv("VITE_API_URL"))
	c, err := config.FromEnv()
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8000/api", c.GetAPIURL())
	require.Equal(t, 10, c.GetPageSize())
	require.Equal(t, 5*time.Second, c.GetPollInterval())
	require.Equal(t, 60*time.Second, c.GetPollDeadline())
	require.Equal(t, time.Hour, c.GetSuggestionsTTL())
	require.Equal(t, config.CacheBackendMemory, c.GetCacheBackend())
	require.Equal(t, ":8000", c.GetDevServerPort())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("VITE_API_URL", "https://pcrs.example.com/api")
	t.Setenv("PCRS_CACHE_BACKEND", "redis")
	t.Setenv("PCRS_POLL_INTERVAL", "1s")
	t.Setenv("PCRS_POLL_DEADLINE", "3s")
	t.Setenv("PCRS_STORE_PATH", "/tmp/pcrs.json")

	c, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, "https://pcrs.example.com/api", c.GetAPIURL())
	require.Equal(t, config.CacheBackendRedis, c.GetCacheBackend())
	require.Equal(t, time.Second, c.GetPollInterval())
	require.Equal(t, 3*time.Second, c.GetPollDeadline())
	require.Equal(t, "/tmp/pcrs.json", c.GetStorePath())
}

func TestFromEnv_RejectsDeadlineShorterThanInterval(t *testing.T) {
	t.Setenv("PCRS_POLL_INTERVAL", "10s")
	t.Setenv("PCRS_POLL_DEADLINE", "5s")

	_, err := config.FromEnv()
	require.Error(t, err)
	require.Contains(t, err.Error(), "poll deadline")
}
