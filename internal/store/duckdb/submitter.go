// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package duckdb

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/store"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

const (
	submitterColumns = "id, identifier, whitelisted, banned"

	// createAttempts bounds the retries when a concurrent insert of the same
	// identifier loses the race and the winner is not yet visible.
	createAttempts = 3
)

type submitters struct {
	ds *datastore
}

func newSubmitters(ds *datastore) *submitters {
	return &submitters{ds}
}

func scanSubmitter(row interface{ Scan(...interface{}) error }) (*v1.Submitter, error) {
	s := &v1.Submitter{}
	if err := row.Scan(&s.ID, &s.Identifier, &s.Whitelisted, &s.Banned); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *submitters) Create(ctx context.Context, identifier string, whitelisted bool) (*v1.Submitter, error) {
	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		_, err := s.ds.q.ExecContext(ctx,
			"INSERT INTO submitters (identifier, whitelisted, banned) VALUES (?, ?, FALSE) ON CONFLICT (identifier) DO NOTHING",
			identifier, whitelisted)
		if err != nil && !isConstraint(err) && !isConflict(err) {
			return nil, errors.Storage("create submitter", err)
		}

		sub, getErr := s.Get(ctx, identifier)
		if getErr == nil {
			return sub, nil
		}
		if !errors.Is(getErr, errors.ErrNotFound) {
			return nil, getErr
		}
		if err == nil {
			err = errors.New("inserted submitter is not visible")
		}
		lastErr = err
		time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
	}
	return nil, errors.Storage("create submitter", lastErr)
}

func (s *submitters) Get(ctx context.Context, identifier string) (*v1.Submitter, error) {
	row := s.ds.q.QueryRowContext(ctx,
		"SELECT "+submitterColumns+" FROM submitters WHERE identifier = ?", identifier)
	sub, err := scanSubmitter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "submitter %s", identifier)
	}
	if err != nil {
		return nil, errors.Storage("get submitter", err)
	}
	return sub, nil
}

func (s *submitters) List(ctx context.Context, opts metav1.ListOptions) ([]*v1.Submitter, error) {
	query, args := paginate("SELECT "+submitterColumns+" FROM submitters ORDER BY id", opts)
	rows, err := s.ds.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Storage("list submitters", err)
	}
	defer rows.Close()

	result := []*v1.Submitter{}
	for rows.Next() {
		sub, err := scanSubmitter(rows)
		if err != nil {
			return nil, errors.Storage("list submitters", err)
		}
		result = append(result, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list submitters", err)
	}
	return result, nil
}

func (s *submitters) SetFlags(ctx context.Context, identifier string, opts metav1.SetFlagsOptions) (*v1.Submitter, error) {
	var (
		sets []string
		args []interface{}
	)
	if opts.Whitelisted != nil {
		sets = append(sets, "whitelisted = ?")
		args = append(args, *opts.Whitelisted)
	}
	if opts.Banned != nil {
		sets = append(sets, "banned = ?")
		args = append(args, *opts.Banned)
	}
	if len(sets) == 0 {
		return s.Get(ctx, identifier)
	}

	args = append(args, identifier)
	res, err := s.ds.q.ExecContext(ctx,
		"UPDATE submitters SET "+strings.Join(sets, ", ")+" WHERE identifier = ?", args...)
	if err != nil {
		return nil, errors.Storage("set submitter flags", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "submitter %s", identifier)
	}
	return s.Get(ctx, identifier)
}

func (s *submitters) Delete(ctx context.Context, identifier string) (metav1.DeleteSubmitterResult, error) {
	var result metav1.DeleteSubmitterResult

	err := s.ds.Tx(ctx, func(f store.Factory) error {
		q := f.(*datastore).q

		sub, err := f.Submitters().Get(ctx, identifier)
		if err != nil {
			return err
		}

		steps := []struct {
			op    string
			query string
			count *int64
		}{
			{"delete packets", "DELETE FROM packets WHERE session_id IN (SELECT id FROM capture_sessions WHERE submitter_id = ?)", &result.Packets},
			{"delete sessions", "DELETE FROM capture_sessions WHERE submitter_id = ?", &result.Sessions},
			{"delete submitter", "DELETE FROM submitters WHERE id = ?", &result.Submitters},
		}
		for _, step := range steps {
			res, err := q.ExecContext(ctx, step.query, sub.ID)
			if err != nil {
				return errors.Storage(step.op, err)
			}
			if *step.count, err = res.RowsAffected(); err != nil {
				return errors.Storage(step.op, err)
			}
		}
		return nil
	})

	return result, err
}

func (s *submitters) Snapshot(ctx context.Context) (map[string]v1.SubmitterIdentity, error) {
	rows, err := s.ds.q.QueryContext(ctx, "SELECT identifier, whitelisted, banned FROM submitters")
	if err != nil {
		return nil, errors.Storage("snapshot submitters", err)
	}
	defer rows.Close()

	snapshot := make(map[string]v1.SubmitterIdentity)
	for rows.Next() {
		var id v1.SubmitterIdentity
		if err := rows.Scan(&id.Identifier, &id.Whitelisted, &id.Banned); err != nil {
			return nil, errors.Storage("snapshot submitters", err)
		}
		snapshot[id.Identifier] = id
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("snapshot submitters", err)
	}
	return snapshot, nil
}

func (s *submitters) Count(ctx context.Context) (int64, error) {
	return count(ctx, s.ds.q, "submitters")
}

func count(ctx context.Context, q querier, table string) (int64, error) {
	var n int64
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, errors.Storage("count "+table, err)
	}
	return n, nil
}
