// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Row ids come from sequences. Foreign keys are not declared because
// DuckDB refuses updates to referenced rows; deletes are ordered by the
// store inside a single transaction instead.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "submitters_id_seq",
		sql:  `CREATE SEQUENCE IF NOT EXISTS submitters_id_seq START 1`,
	},
	{
		name: "submitters",
		sql: `CREATE TABLE IF NOT EXISTS submitters (
	id          BIGINT PRIMARY KEY DEFAULT nextval('submitters_id_seq'),
	identifier  VARCHAR NOT NULL UNIQUE,
	whitelisted BOOLEAN NOT NULL DEFAULT FALSE,
	banned      BOOLEAN NOT NULL DEFAULT FALSE
)`,
	},
	{
		name: "capture_sessions_id_seq",
		sql:  `CREATE SEQUENCE IF NOT EXISTS capture_sessions_id_seq START 1`,
	},
	{
		name: "capture_sessions",
		sql: `CREATE TABLE IF NOT EXISTS capture_sessions (
	id               BIGINT PRIMARY KEY DEFAULT nextval('capture_sessions_id_seq'),
	submitter_id     BIGINT NOT NULL,
	start_time       TIMESTAMP NOT NULL,
	last_update_time TIMESTAMP NOT NULL,
	client_version   VARCHAR NOT NULL
)`,
	},
	{
		name: "packets_id_seq",
		sql:  `CREATE SEQUENCE IF NOT EXISTS packets_id_seq START 1`,
	},
	{
		name: "packets",
		sql: `CREATE TABLE IF NOT EXISTS packets (
	id          BIGINT PRIMARY KEY DEFAULT nextval('packets_id_seq'),
	session_id  BIGINT NOT NULL,
	message_id  VARCHAR NOT NULL UNIQUE,
	data        BLOB NOT NULL,
	captured_at TIMESTAMP NOT NULL,
	packet_type INTEGER NOT NULL,
	packet_size INTEGER NOT NULL,
	direction   INTEGER NOT NULL,
	zone_id     INTEGER NOT NULL,
	origin      INTEGER NOT NULL
)`,
	},
}

// MigrateSchema creates the tables. It is idempotent.
func MigrateSchema(ctx context.Context, client *sql.DB) error {
	for _, m := range migrations {
		if _, err := client.ExecContext(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}
