package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("FAULTSERVE_ORIGIN_DIR", "/var/lib/faultserve")

	cfg, err := Parse()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "dataset.json.gz", cfg.DatasetPath)
	require.Equal(t, "entities", cfg.EntityPrefix)
	require.Equal(t, 5*time.Minute, cfg.CacheTTL)
	require.Equal(t, 30*time.Second, cfg.FetchTimeout)
	require.Equal(t, time.Duration(0), cfg.MaxResidency)
	require.Equal(t, 4, cfg.WriteBackBuffer)
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("FAULTSERVE_ADDR", ":9090")
	t.Setenv("FAULTSERVE_ORIGIN_URL", "https://origin.example.com/data")
	t.Setenv("FAULTSERVE_DATASET_PATH", "consolidated/all.json.gz")
	t.Setenv("FAULTSERVE_CACHE_DB", "/tmp/cache.db")
	t.Setenv("FAULTSERVE_CACHE_TTL", "90s")
	t.Setenv("FAULTSERVE_MAX_RESIDENCY", "1h")

	cfg, err := Parse()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Addr)
	require.Equal(t, "https://origin.example.com/data", cfg.OriginURL)
	require.Equal(t, "consolidated/all.json.gz", cfg.DatasetPath)
	require.Equal(t, "/tmp/cache.db", cfg.CacheDB)
	require.Equal(t, 90*time.Second, cfg.CacheTTL)
	require.Equal(t, time.Hour, cfg.MaxResidency)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Addr:            ":8080",
			OriginDir:       "/data",
			DatasetPath:     "dataset.json.gz",
			CacheTTL:        time.Minute,
			WriteBackBuffer: 4,
		}
	}

	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "no origin", mutate: func(c *Config) { c.OriginDir = "" }},
		{name: "both origins", mutate: func(c *Config) { c.OriginURL = "https://x" }},
		{name: "empty dataset path", mutate: func(c *Config) { c.DatasetPath = "" }},
		{name: "zero ttl", mutate: func(c *Config) { c.CacheTTL = 0 }},
		{name: "negative buffer", mutate: func(c *Config) { c.WriteBackBuffer = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestParseInvalidDuration(t *testing.T) {
	t.Setenv("FAULTSERVE_ORIGIN_DIR", "/data")
	t.Setenv("FAULTSERVE_CACHE_TTL", "five minutes")

	_, err := Parse()
	require.Error(t, err)
}
