// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

const (
	BrokerRedis  = "redis"
	BrokerMemory = "memory"
)

// Config is the whole service configuration. Field tags are read by viper
// (mapstructure) and written back by the config command (yaml).
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Redis   RedisConfig   `mapstructure:"redis" yaml:"redis"`
	Queue   QueueConfig   `mapstructure:"queue" yaml:"queue"`
	Ingest  IngestConfig  `mapstructure:"ingest" yaml:"ingest"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

type ServerConfig struct {
	Listen          string        `mapstructure:"listen" yaml:"listen"`
	Mode            string        `mapstructure:"mode" yaml:"mode"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies" yaml:"trusted_proxies"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type StorageConfig struct {
	// Path of the DuckDB database file, empty for an in-memory database.
	Path            string        `mapstructure:"path" yaml:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// RedisConfig maps onto redis.Options.
type RedisConfig struct {
	PoolFIFO        bool          `mapstructure:"pool_fifo" yaml:"pool_fifo"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" yaml:"dial_timeout"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff" yaml:"max_retry_backoff"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff" yaml:"min_retry_backoff"`
	MaxRetries      int           `mapstructure:"max_retries" yaml:"max_retries"`
	Username        string        `mapstructure:"username" yaml:"username"`
	Network         string        `mapstructure:"network" yaml:"network"`
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	Password        string        `mapstructure:"password" yaml:"password"`
	DB              int           `mapstructure:"db" yaml:"db"`
}

type QueueConfig struct {
	Broker string `mapstructure:"broker" yaml:"broker"`
	// Name prefixes the redis keys "<name>:pending" and "<name>:processing:<consumer>".
	Name         string        `mapstructure:"name" yaml:"name"`
	// Consumer defaults to the hostname. It must stay the same across
	// restarts of one instance and differ between concurrent instances.
	Consumer     string        `mapstructure:"consumer" yaml:"consumer"`
	BlockTimeout time.Duration `mapstructure:"block_timeout" yaml:"block_timeout"`
	// Buffer is the capacity of the memory broker.
	Buffer int `mapstructure:"buffer" yaml:"buffer"`
}

type IngestConfig struct {
	Workers              int           `mapstructure:"workers" yaml:"workers"`
	ReconciliationWindow time.Duration `mapstructure:"reconciliation_window" yaml:"reconciliation_window"`
	CompactionInterval   time.Duration `mapstructure:"compaction_interval" yaml:"compaction_interval"`
	RetryBackoff         time.Duration `mapstructure:"retry_backoff" yaml:"retry_backoff"`
	RedactNames          bool          `mapstructure:"redact_names" yaml:"redact_names"`
}

type CacheConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval" yaml:"refresh_interval"`
}

type LogConfig struct {
	Level  string        `mapstructure:"level" yaml:"level"`
	Format string        `mapstructure:"format" yaml:"format"`
	File   LogFileConfig `mapstructure:"file" yaml:"file"`
}

type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	Path       string `mapstructure:"path" yaml:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// NewConfig returns a Config struct with the default value
func NewConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          ":8080",
			Mode:            "release",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		Storage: StorageConfig{
			Path:            "packet-eater.duckdb",
			MaxOpenConns:    16,
			MaxIdleConns:    8,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Redis: RedisConfig{
			Network:         "tcp",
			Addr:            "localhost:6379",
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			MaxRetries:      3,
			MinRetryBackoff: 8 * time.Millisecond,
			MaxRetryBackoff: 512 * time.Millisecond,
		},
		Queue: QueueConfig{
			Broker:       BrokerRedis,
			Name:         "packet-eater:ingest",
			BlockTimeout: time.Second,
			Buffer:       4096,
		},
		Ingest: IngestConfig{
			Workers:              8,
			ReconciliationWindow: 10 * time.Second,
			CompactionInterval:   60 * time.Second,
			RetryBackoff:         time.Second,
			RedactNames:          true,
		},
		Cache: CacheConfig{
			RefreshInterval: 60 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File: LogFileConfig{
				Path:       "packet-eater.log",
				MaxSizeMB:  100,
				MaxBackups: 5,
				MaxAgeDays: 28,
			},
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Queue.Broker)) {
	case BrokerRedis:
		if c.Redis.Addr == "" {
			return invalid("redis.addr is required for the redis broker")
		}
	case BrokerMemory:
		if c.Queue.Buffer <= 0 {
			return invalid("queue.buffer must be positive, got %d", c.Queue.Buffer)
		}
	default:
		return invalid("unknown queue.broker %q (must be redis or memory)", c.Queue.Broker)
	}

	if c.Queue.Name == "" {
		return invalid("queue.name is required")
	}
	if c.Ingest.Workers <= 0 {
		return invalid("ingest.workers must be positive, got %d", c.Ingest.Workers)
	}
	if c.Ingest.ReconciliationWindow <= 0 {
		return invalid("ingest.reconciliation_window must be positive, got %v", c.Ingest.ReconciliationWindow)
	}
	if c.Cache.RefreshInterval <= 0 {
		return invalid("cache.refresh_interval must be positive, got %v", c.Cache.RefreshInterval)
	}
	if c.Server.Listen == "" {
		return invalid("server.listen is required")
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return invalid("unsupported server.mode %q (must be debug, release or test)", c.Server.Mode)
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return invalid("unsupported log.format %q (must be text or json)", c.Log.Format)
	}
	if c.Log.File.Enabled && c.Log.File.Path == "" {
		return invalid("log.file.path is required when file output is enabled")
	}

	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", errors.ErrInvalidConfig, fmt.Sprintf(format, args...))
}
