// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package cache keeps an in-memory view of submitter identities for the
// admission fast path.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/p1nant0m/packet-eater/internal/log"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// Snapshotter loads the full identity set from storage.
type Snapshotter interface {
	Snapshot(ctx context.Context) (map[string]v1.SubmitterIdentity, error)
}

type snapshot = map[string]v1.SubmitterIdentity

// Cache maps submitter identifiers to identities. Readers load an immutable
// map without locking; writers swap in a modified copy.
type Cache struct {
	current atomic.Pointer[snapshot]

	// refreshMu keeps manual and periodic refreshes from interleaving.
	refreshMu sync.Mutex

	// mu serializes writers and guards the fields below.
	mu         sync.Mutex
	refreshing bool
	// pending records writes made while a refresh is in flight. A nil
	// identity pointer is a removal.
	pending map[string]*v1.SubmitterIdentity

	source   Snapshotter
	interval time.Duration
	log      *logrus.Entry
}

func New(source Snapshotter, interval time.Duration) *Cache {
	c := &Cache{
		source:   source,
		interval: interval,
		log:      log.Component("cache"),
	}
	empty := make(snapshot)
	c.current.Store(&empty)
	return c
}

func (c *Cache) Get(identifier string) (v1.SubmitterIdentity, bool) {
	id, ok := (*c.current.Load())[identifier]
	return id, ok
}

func (c *Cache) Len() int {
	return len(*c.current.Load())
}

// Put inserts or replaces one identity so that it is visible to the next
// Get, even before the next refresh.
func (c *Cache) Put(id v1.SubmitterIdentity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		c.pending[id.Identifier] = &id
	}
	c.swap(func(m snapshot) { m[id.Identifier] = id })
}

func (c *Cache) Remove(identifier string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.refreshing {
		c.pending[identifier] = nil
	}
	c.swap(func(m snapshot) { delete(m, identifier) })
}

// Replace installs m as the whole content of the cache.
func (c *Cache) Replace(m map[string]v1.SubmitterIdentity) {
	next := make(snapshot, len(m))
	for k, v := range m {
		next[k] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.current.Store(&next)
}

// swap copies the current map, applies fn and publishes the copy. Callers
// hold mu.
func (c *Cache) swap(fn func(snapshot)) {
	old := *c.current.Load()
	next := make(snapshot, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	fn(next)
	c.current.Store(&next)
}

// Refresh reloads the cache from storage. On failure the previous content
// stays in place.
func (c *Cache) Refresh(ctx context.Context) error {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	c.refreshing = true
	c.pending = make(map[string]*v1.SubmitterIdentity)
	c.mu.Unlock()

	fresh, err := c.source.Snapshot(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	pending := c.pending
	c.refreshing = false
	c.pending = nil

	if err != nil {
		return err
	}

	next := make(snapshot, len(fresh)+len(pending))
	for k, v := range fresh {
		next[k] = v
	}
	for identifier, id := range pending {
		if id == nil {
			delete(next, identifier)
			continue
		}
		next[identifier] = *id
	}
	c.current.Store(&next)
	return nil
}

// Run refreshes immediately and then on every tick until ctx is done.
// Refreshes run on this goroutine only, so they never overlap.
func (c *Cache) Run(ctx context.Context) error {
	c.refreshAndLog(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.refreshAndLog(ctx)
		}
	}
}

func (c *Cache) refreshAndLog(ctx context.Context) {
	start := time.Now()
	if err := c.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		c.log.WithFields(logrus.Fields{
			"err":      err,
			"location": "cache.Refresh",
		}).Warning("failed to refresh submitter cache, keeping previous snapshot")
		return
	}
	c.log.WithFields(logrus.Fields{
		"entries":  c.Len(),
		"duration": time.Since(start),
	}).Debug("submitter cache refreshed")
}
