// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"
)

type Options struct {
	// Path of the database file, empty for an in-memory database.
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewDuckDBClient opens the database, checks it is reachable and applies
// the schema.
func NewDuckDBClient(ctx context.Context, opts *Options) (*sql.DB, error) {
	client, err := sql.Open("duckdb", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb %q: %w", opts.Path, err)
	}

	if opts.MaxOpenConns > 0 {
		client.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		client.SetMaxIdleConns(opts.MaxIdleConns)
	}
	client.SetConnMaxLifetime(opts.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.PingContext(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}

	if err := MigrateSchema(ctx, client); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}
