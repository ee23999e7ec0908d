// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package reconcile

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/p1nant0m/packet-eater/internal/log"
)

// Compactor runs the periodic session compaction pass. Merging adjacent
// sessions is not enabled, so every pass leaves storage untouched.
type Compactor struct {
	interval time.Duration
	passes   atomic.Uint64
	log      *logrus.Entry
}

func NewCompactor(interval time.Duration) *Compactor {
	return &Compactor{
		interval: interval,
		log:      log.Component("compactor"),
	}
}

// Compact runs one pass.
func (c *Compactor) Compact(ctx context.Context) error {
	c.passes.Add(1)
	c.log.Debug("compaction pass finished, nothing to merge")
	return nil
}

// Passes returns how many passes have run.
func (c *Compactor) Passes() uint64 {
	return c.passes.Load()
}

// Run calls Compact on every tick until ctx is done. A zero interval
// disables the loop.
func (c *Compactor) Run(ctx context.Context) error {
	if c.interval <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.Compact(ctx); err != nil {
				c.log.WithFields(logrus.Fields{
					"err":      err,
					"location": "compactor.Compact",
				}).Warning("compaction pass failed")
			}
		}
	}
}
