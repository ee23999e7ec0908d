// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/marcboeker/go-duckdb"

	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/pkg/db"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
	"github.com/p1nant0m/packet-eater/pkg/options"
)

var (
	duckdbFactory store.Factory
	once          sync.Once
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type datastore struct {
	db *sql.DB
	q  querier
	// inTx is set on the factory handed to a Tx callback.
	inTx bool
}

func (ds *datastore) Submitters() store.SubmitterStore {
	return newSubmitters(ds)
}

func (ds *datastore) Sessions() store.SessionStore {
	return newSessions(ds)
}

func (ds *datastore) Packets() store.PacketStore {
	return newPackets(ds)
}

func (ds *datastore) Tx(ctx context.Context, fn func(store.Factory) error) error {
	if ds.inTx {
		return fn(ds)
	}

	tx, err := ds.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Storage("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&datastore{db: ds.db, q: tx, inTx: true}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		// Only packets carry a unique key written inside transactions.
		if isConstraint(err) {
			return errors.Wrap(errors.ErrDuplicateMessage, err.Error())
		}
		return errors.Storage("commit transaction", err)
	}

	return nil
}

func (ds *datastore) Close() error {
	if ds.inTx {
		return nil
	}
	return ds.db.Close()
}

// New opens a dedicated store. Tests use it with an in-memory database.
func New(ctx context.Context, opts *options.DuckDBOptions) (store.Factory, error) {
	client, err := db.NewDuckDBClient(ctx, &db.Options{
		Path:            opts.Path,
		MaxOpenConns:    opts.MaxOpenConns,
		MaxIdleConns:    opts.MaxIdleConns,
		ConnMaxLifetime: opts.ConnMaxLifetime,
	})
	if err != nil {
		return nil, errors.Storage("open store", err)
	}
	return &datastore{db: client, q: client}, nil
}

// GetDuckDBFactoryOr returns the process wide store, opening it with opts on
// the first call.
func GetDuckDBFactoryOr(ctx context.Context, opts *options.DuckDBOptions) (store.Factory, error) {
	if opts == nil && duckdbFactory == nil {
		return nil, fmt.Errorf("failed to get duckdb store factory")
	}

	var err error
	once.Do(func() {
		duckdbFactory, err = New(ctx, opts)
	})

	if duckdbFactory == nil || err != nil {
		return nil, fmt.Errorf("failed to get duckdb store factory, duckdbFactory: %+v, error: %w", duckdbFactory, err)
	}

	return duckdbFactory, nil
}

// isConstraint reports whether err is a DuckDB constraint violation, which
// is how a concurrent insert of the same unique key surfaces.
func isConstraint(err error) bool {
	var dErr *duckdb.Error
	if errors.As(err, &dErr) && dErr.Type == duckdb.ErrorTypeConstraint {
		return true
	}
	return strings.Contains(err.Error(), "Constraint Error")
}

// isConflict reports a write-write conflict between concurrent transactions.
func isConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "Conflict") || strings.Contains(msg, "conflict")
}

func paginate(query string, opts metav1.ListOptions) (string, []interface{}) {
	if opts.Limit <= 0 {
		return query, nil
	}
	return query + " LIMIT ? OFFSET ?", []interface{}{int64(opts.Limit), int64(opts.Offset)}
}
