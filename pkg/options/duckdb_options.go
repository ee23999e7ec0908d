// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package options

import (
	"time"

	"github.com/p1nant0m/packet-eater/config"
)

// DuckDBOptions defines options for the duckdb database.
type DuckDBOptions struct {
	// Path of the database file. Empty opens an in-memory database.
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewDuckDBOptions create a default value instance.
func NewDuckDBOptions() *DuckDBOptions {
	return &DuckDBOptions{
		Path:            "packet-eater.duckdb",
		MaxOpenConns:    16,
		MaxIdleConns:    8,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// NewInMemoryDuckDBOptions is used by tests and the memory broker setup.
func NewInMemoryDuckDBOptions() *DuckDBOptions {
	opts := NewDuckDBOptions()
	opts.Path = ""
	return opts
}

func DuckDBOptionsFromConfig(cfg config.StorageConfig) *DuckDBOptions {
	return &DuckDBOptions{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
}
