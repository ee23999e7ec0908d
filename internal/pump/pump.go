// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package pump drains the ingestion queue into storage.
package pump

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/p1nant0m/packet-eater/handler"
	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/log"
	"github.com/p1nant0m/packet-eater/internal/queue"
	"github.com/p1nant0m/packet-eater/internal/reconcile"
	"github.com/p1nant0m/packet-eater/internal/store"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

const settleTimeout = 5 * time.Second

// Pump runs a pool of workers that consume ingest messages, decode them,
// reconcile their session and persist them.
type Pump struct {
	queue      queue.Queue
	store      store.Factory
	reconciler *reconcile.Reconciler
	decoder    handler.HeaderDecoder
	hints      *cache.SessionHints

	workers      int
	retryBackoff time.Duration

	metrics *Metrics
	log     *logrus.Entry
}

func New(q queue.Queue, f store.Factory, r *reconcile.Reconciler, opts ...Option) (*Pump, error) {
	p := &Pump{
		queue:        q,
		store:        f,
		reconciler:   r,
		decoder:      handler.NewLayerDecoder(),
		workers:      1,
		retryBackoff: time.Second,
		metrics:      newMetrics(),
		log:          log.Component("pump"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, errors.Wrap(errors.ErrInvalidConfig, err.Error())
		}
	}
	return p, nil
}

func (p *Pump) Stats() v1.PumpStats {
	return p.metrics.Snapshot()
}

// Run recovers messages left in flight by a previous run and then consumes
// until ctx is done.
func (p *Pump) Run(ctx context.Context) error {
	moved, err := p.queue.Recover(ctx)
	if err != nil {
		p.log.WithFields(logrus.Fields{
			"err":      err,
			"location": "pump.Run",
		}).Warning("failed to recover in-flight messages")
	} else if moved > 0 {
		p.log.WithField("messages", moved).Info("recovered in-flight messages")
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		id := i
		g.Go(func() error {
			return p.worker(ctx, id)
		})
	}
	p.log.WithField("workers", p.workers).Info("ingestion workers started")
	return g.Wait()
}

func (p *Pump) worker(ctx context.Context, id int) error {
	logger := p.log.WithField("worker", id)
	for {
		if ctx.Err() != nil {
			return nil
		}

		d, err := p.queue.Consume(ctx)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if ctx.Err() != nil {
			if d != nil {
				p.settle(d, d.Requeue)
			}
			return nil
		}
		if err != nil {
			logger.WithFields(logrus.Fields{
				"err":      err,
				"location": "pump.worker",
			}).Warning("failed to consume from queue")
			p.sleep(ctx)
			continue
		}

		p.handle(ctx, d, logger)
	}
}

func (p *Pump) handle(ctx context.Context, d queue.Delivery, logger *logrus.Entry) {
	start := time.Now()
	err := p.Process(ctx, d.Body())
	p.metrics.observe(time.Since(start))

	switch {
	case err == nil:
		p.metrics.processed.Add(1)
		p.settle(d, d.Ack)
	case errors.Is(err, errors.ErrDuplicateMessage):
		p.metrics.duplicates.Add(1)
		logger.WithField("err", err).Debug("dropping duplicate delivery")
		p.settle(d, d.Ack)
	case errors.IsPermanent(err):
		p.metrics.dropped.Add(1)
		logger.WithFields(logrus.Fields{
			"err":      err,
			"location": "pump.handle",
		}).Warning("dropping message that can never be stored")
		p.settle(d, d.Ack)
	default:
		p.metrics.requeued.Add(1)
		logger.WithFields(logrus.Fields{
			"err":      err,
			"location": "pump.handle",
		}).Warning("storing message failed, handing it back to the queue")
		p.sleep(ctx)
		p.settle(d, d.Requeue)
	}
}

// settle acks or requeues with its own deadline so that shutdown does not
// leave the delivery dangling.
func (p *Pump) settle(d queue.Delivery, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		p.log.WithFields(logrus.Fields{
			"err":      err,
			"location": "pump.settle",
		}).Warning("failed to settle delivery, it will be recovered on restart")
	}
}

func (p *Pump) sleep(ctx context.Context) {
	if p.retryBackoff <= 0 {
		return
	}
	t := time.NewTimer(p.retryBackoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Process stores one message body. All writes happen in one transaction
// while the submitter lock is held.
func (p *Pump) Process(ctx context.Context, body []byte) error {
	msg, err := v1.DecodeIngestMessage(body)
	if err != nil {
		return err
	}
	payload, err := msg.Payload()
	if err != nil {
		return err
	}
	header, err := p.decoder.Decode(payload)
	if err != nil {
		return err
	}

	ts := msg.Timestamp()
	var session *v1.CaptureSession

	err = p.reconciler.Serialize(msg.SubmitterIdentifier, func() error {
		return p.store.Tx(ctx, func(tx store.Factory) error {
			sub, err := tx.Submitters().Get(ctx, msg.SubmitterIdentifier)
			if errors.Is(err, errors.ErrNotFound) {
				return errors.Wrapf(errors.ErrUnknownSubmitter, "identifier %s", msg.SubmitterIdentifier)
			}
			if err != nil {
				return err
			}

			session, _, err = p.reconciler.Reconcile(ctx, tx.Sessions(), sub.ID, ts, msg.ClientVersion)
			if err != nil {
				return err
			}

			return tx.Packets().Create(ctx, &v1.PacketRecord{
				SessionID: session.ID,
				MessageID: msg.MessageID,
				Data:      payload,
				Timestamp: ts,
				Type:      header.Type,
				Size:      header.Size,
				Direction: msg.Direction,
				ZoneID:    msg.ZoneID,
				Origin:    msg.Origin,
			})
		})
	})
	if err != nil {
		return err
	}

	if p.hints != nil {
		p.hints.Set(msg.SubmitterIdentifier, session.ID, session.LastUpdateTime)
	}
	return nil
}
