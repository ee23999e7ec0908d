// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package queue carries ingest messages from the upload endpoint to the
// workers with at-least-once delivery.
package queue

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/p1nant0m/packet-eater/config"
	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/pkg/options"
)

// ErrEmpty is returned by Consume when nothing arrived before the block
// timeout.
var ErrEmpty = errors.New("queue is empty")

// Delivery is one consumed message. Exactly one of Ack or Requeue must be
// called.
type Delivery interface {
	Body() []byte
	// Ack removes the message for good.
	Ack(ctx context.Context) error
	// Requeue hands the message back for another attempt.
	Requeue(ctx context.Context) error
}

type Queue interface {
	Enqueue(ctx context.Context, body []byte) error
	// Consume blocks until a message is available, the block timeout passes
	// (ErrEmpty) or ctx is done.
	Consume(ctx context.Context) (Delivery, error)
	// Recover moves messages left in flight by a previous run back to the
	// pending list and returns how many were moved.
	Recover(ctx context.Context) (int, error)
	// Len returns the number of pending messages.
	Len(ctx context.Context) (int64, error)
	Close() error
}

// New builds the broker selected by cfg.Queue.Broker.
func New(cfg *config.Config) (Queue, error) {
	consumer := cfg.Queue.Consumer
	if consumer == "" {
		consumer = DefaultConsumer()
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Queue.Broker)) {
	case config.BrokerMemory:
		return NewMemory(cfg.Queue.Buffer, cfg.Queue.BlockTimeout), nil
	case config.BrokerRedis:
		client := redis.NewClient(options.MakeNewRedisOptions(cfg.Redis))
		return NewRedis(client, cfg.Queue.Name, consumer, cfg.Queue.BlockTimeout), nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unknown broker %q", cfg.Queue.Broker)
	}
}

// DefaultConsumer names the consumer after the host so that a restarted
// process finds its own processing list again.
func DefaultConsumer() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "packet-eater"
	}
	return host
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, errors.ErrQueueUnavailable, err)
}
