// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package app assembles the upload server, the ingestion workers and their
// background loops into one process.
package app

import (
	"context"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/p1nant0m/packet-eater/config"
	"github.com/p1nant0m/packet-eater/handler"
	"github.com/p1nant0m/packet-eater/internal/admission"
	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/log"
	"github.com/p1nant0m/packet-eater/internal/pump"
	"github.com/p1nant0m/packet-eater/internal/queue"
	"github.com/p1nant0m/packet-eater/internal/reconcile"
	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/internal/store/duckdb"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	"github.com/p1nant0m/packet-eater/pkg/options"
	"github.com/p1nant0m/packet-eater/service/rest"
	srvv1 "github.com/p1nant0m/packet-eater/service/rest/service/v1"
)

type App struct {
	cfg *config.Config
	log *logrus.Entry

	store     store.Factory
	queue     queue.Queue
	cache     *cache.Cache
	compactor *reconcile.Compactor
	pump      *pump.Pump
	server    *rest.RestServer
}

// New opens the store and the broker and wires every component. The
// caller owns the returned App and must Close it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log.Component("app")}

	var err error
	if a.store, err = duckdb.New(ctx, options.DuckDBOptionsFromConfig(cfg.Storage)); err != nil {
		return nil, err
	}
	if a.queue, err = queue.New(cfg); err != nil {
		a.Close()
		return nil, err
	}

	hints := cache.NewSessionHints(cfg.Ingest.ReconciliationWindow)
	a.cache = cache.New(a.store.Submitters(), cfg.Cache.RefreshInterval)
	a.compactor = reconcile.NewCompactor(cfg.Ingest.CompactionInterval)

	a.pump, err = pump.New(a.queue, a.store, reconcile.New(cfg.Ingest.ReconciliationWindow),
		pump.WithWorkers(cfg.Ingest.Workers),
		pump.WithRetryBackoff(cfg.Ingest.RetryBackoff),
		pump.WithDecoder(handler.NewLayerDecoder()),
		pump.WithSessionHints(hints),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	srv := srvv1.NewService(srvv1.Dependencies{
		Store:       a.store,
		Queue:       a.queue,
		Gate:        admission.NewGate(a.cache, a.store.Submitters()),
		Cache:       a.cache,
		Hints:       hints,
		Pump:        a.pump,
		RedactNames: cfg.Ingest.RedactNames,
	})
	if a.server, err = rest.NewRestServer(srv, cfg.Server); err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// Store exposes the opened store to offline commands and tests.
func (a *App) Store() store.Factory {
	return a.store
}

func (a *App) PumpStats() v1.PumpStats {
	return a.pump.Stats()
}

// Run serves until ctx is done or one of the loops fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return a.cache.Run(ctx) })
	g.Go(func() error { return a.compactor.Run(ctx) })
	g.Go(func() error { return a.pump.Run(ctx) })
	g.Go(func() error { return a.server.Run(ctx) })

	a.log.WithFields(logrus.Fields{
		"listen":  a.cfg.Server.Listen,
		"broker":  a.cfg.Queue.Broker,
		"storage": a.cfg.Storage.Path,
		"workers": a.cfg.Ingest.Workers,
	}).Info("packet eater started")

	err := g.Wait()
	a.log.Info("packet eater stopped")
	return err
}

// Close releases the broker and the store.
func (a *App) Close() error {
	var first error
	if a.queue != nil {
		if err := a.queue.Close(); err != nil {
			first = err
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
