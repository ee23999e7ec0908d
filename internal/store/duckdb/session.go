// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package duckdb

import (
	"context"
	"database/sql"
	"time"

	"github.com/p1nant0m/packet-eater/internal/errors"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

const sessionColumns = "id, submitter_id, start_time, last_update_time, client_version"

type sessions struct {
	ds *datastore
}

func newSessions(ds *datastore) *sessions {
	return &sessions{ds}
}

func scanSession(row interface{ Scan(...interface{}) error }) (*v1.CaptureSession, error) {
	s := &v1.CaptureSession{}
	if err := row.Scan(&s.ID, &s.SubmitterID, &s.StartTime, &s.LastUpdateTime, &s.ClientVersion); err != nil {
		return nil, err
	}
	s.StartTime = s.StartTime.UTC()
	s.LastUpdateTime = s.LastUpdateTime.UTC()
	return s, nil
}

func (s *sessions) Latest(ctx context.Context, submitterID int64) (*v1.CaptureSession, error) {
	row := s.ds.q.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM capture_sessions WHERE submitter_id = ? ORDER BY last_update_time DESC, id DESC LIMIT 1",
		submitterID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "no session for submitter %d", submitterID)
	}
	if err != nil {
		return nil, errors.Storage("latest session", err)
	}
	return session, nil
}

func (s *sessions) Create(ctx context.Context, session *v1.CaptureSession) error {
	if session.LastUpdateTime.Before(session.StartTime) {
		session.LastUpdateTime = session.StartTime
	}
	err := s.ds.q.QueryRowContext(ctx,
		"INSERT INTO capture_sessions (submitter_id, start_time, last_update_time, client_version) VALUES (?, ?, ?, ?) RETURNING id",
		session.SubmitterID, session.StartTime.UTC(), session.LastUpdateTime.UTC(), session.ClientVersion,
	).Scan(&session.ID)
	if err != nil {
		return errors.Storage("create session", err)
	}
	return nil
}

func (s *sessions) Touch(ctx context.Context, id int64, ts time.Time) error {
	res, err := s.ds.q.ExecContext(ctx,
		"UPDATE capture_sessions SET last_update_time = GREATEST(last_update_time, CAST(? AS TIMESTAMP)) WHERE id = ?",
		ts.UTC(), id)
	if err != nil {
		return errors.Storage("touch session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Wrapf(errors.ErrNotFound, "session %d", id)
	}
	return nil
}

func (s *sessions) Get(ctx context.Context, id int64) (*v1.CaptureSession, error) {
	row := s.ds.q.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM capture_sessions WHERE id = ?", id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(errors.ErrNotFound, "session %d", id)
	}
	if err != nil {
		return nil, errors.Storage("get session", err)
	}
	return session, nil
}

func (s *sessions) ListBySubmitter(ctx context.Context, submitterID int64, opts metav1.ListOptions) ([]*v1.CaptureSession, error) {
	query, args := paginate("SELECT "+sessionColumns+" FROM capture_sessions WHERE submitter_id = ? ORDER BY start_time, id", opts)
	rows, err := s.ds.q.QueryContext(ctx, query, append([]interface{}{submitterID}, args...)...)
	if err != nil {
		return nil, errors.Storage("list sessions", err)
	}
	defer rows.Close()

	result := []*v1.CaptureSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, errors.Storage("list sessions", err)
		}
		result = append(result, session)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Storage("list sessions", err)
	}
	return result, nil
}

func (s *sessions) Count(ctx context.Context) (int64, error) {
	return count(ctx, s.ds.q, "capture_sessions")
}
