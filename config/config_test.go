package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assertDefaults(t, cfg)
	assert.Equal(t, 10*time.Second, cfg.Ingest.ReconciliationWindow)
	assert.Equal(t, 60*time.Second, cfg.Cache.RefreshInterval)
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen: "127.0.0.1:9000"
  trusted_proxies:
    - "10.0.0.1"
storage:
  path: ""
queue:
  broker: memory
  buffer: 16
ingest:
  workers: 2
  reconciliation_window: 15s
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Listen)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "", cfg.Storage.Path)
	assert.Equal(t, BrokerMemory, cfg.Queue.Broker)
	assert.Equal(t, 16, cfg.Queue.Buffer)
	assert.Equal(t, 2, cfg.Ingest.Workers)
	assert.Equal(t, 15*time.Second, cfg.Ingest.ReconciliationWindow)
	assert.Equal(t, "json", cfg.Log.Format)

	// untouched keys keep their defaults
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Ingest.RedactNames)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("PACKET_EATER_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("PACKET_EATER_INGEST_WORKERS", "3")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Ingest.Workers)
}

func TestLoadNormalizesBroker(t *testing.T) {
	t.Setenv("PACKET_EATER_QUEUE_BROKER", " Memory ")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, BrokerMemory, cfg.Queue.Broker)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown broker", func(c *Config) { c.Queue.Broker = "kafka" }},
		{"no workers", func(c *Config) { c.Ingest.Workers = 0 }},
		{"zero window", func(c *Config) { c.Ingest.ReconciliationWindow = 0 }},
		{"zero refresh", func(c *Config) { c.Cache.RefreshInterval = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"file without path", func(c *Config) { c.Log.File = LogFileConfig{Enabled: true} }},
		{"memory without buffer", func(c *Config) { c.Queue.Broker = BrokerMemory; c.Queue.Buffer = 0 }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "production" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, errors.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestDumpRoundTrip(t *testing.T) {
	out, err := Dump(NewConfig())
	require.NoError(t, err)

	cfg, err := Load(writeConfig(t, string(out)))
	require.NoError(t, err)
	assertDefaults(t, cfg)
}

func assertDefaults(t *testing.T, cfg *Config) {
	t.Helper()
	want := NewConfig()
	assert.Equal(t, want.Server.Listen, cfg.Server.Listen)
	assert.Equal(t, want.Server.ShutdownTimeout, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.Equal(t, want.Storage, cfg.Storage)
	assert.Equal(t, want.Redis, cfg.Redis)
	assert.Equal(t, want.Queue, cfg.Queue)
	assert.Equal(t, want.Ingest, cfg.Ingest)
	assert.Equal(t, want.Cache, cfg.Cache)
	assert.Equal(t, want.Log, cfg.Log)
}
