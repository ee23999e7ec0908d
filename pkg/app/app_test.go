package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/p1nant0m/packet-eater/config"
	"github.com/p1nant0m/packet-eater/internal/errors"
)

func memoryConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.Storage.Path = ""
	cfg.Queue.Broker = config.BrokerMemory
	cfg.Queue.BlockTimeout = 10 * time.Millisecond
	cfg.Server.Listen = "127.0.0.1:0"
	cfg.Server.Mode = "test"
	cfg.Ingest.Workers = 2
	return cfg
}

func TestAppRunsUntilCancelled(t *testing.T) {
	a, err := New(context.Background(), memoryConfig())
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatalf("Expected Run to return after cancel")
	}

	n, err := a.Store().Submitters().Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
	assert.Equal(t, uint64(0), a.PumpStats().Processed)
}

func TestAppRejectsInvalidConfig(t *testing.T) {
	cfg := memoryConfig()
	cfg.Ingest.Workers = 0

	_, err := New(context.Background(), cfg)
	if !errors.Is(err, errors.ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig, got %v", err)
	}
}
