// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package queue

import (
	"context"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// HeartbeatTTL is how long a consumer counts as alive after its last
// Consume or Recover call.
const HeartbeatTTL = 30 * time.Second

// RedisQueue implements the reliable list pattern: producers LPUSH onto the
// pending list, consumers atomically move an entry to their own processing
// list and remove it from there once it is handled. Every consumer keeps a
// "<name>:consumer:<consumer>" key alive while it runs so that the
// processing lists of dead consumers can be told apart.
type RedisQueue struct {
	RDClient      *redis.Client
	name          string
	consumer      string
	pendingKey    string
	processingKey string
	blockTimeout  time.Duration
	heartbeatTTL  time.Duration
}

func NewRedis(client *redis.Client, name, consumer string, blockTimeout time.Duration) *RedisQueue {
	if blockTimeout <= 0 {
		blockTimeout = time.Second
	}
	return &RedisQueue{
		RDClient:      client,
		name:          name,
		consumer:      consumer,
		pendingKey:    name + ":pending",
		processingKey: processingPrefix(name) + consumer,
		blockTimeout:  blockTimeout,
		heartbeatTTL:  HeartbeatTTL,
	}
}

func processingPrefix(name string) string {
	return name + ":processing:"
}

func heartbeatKey(name, consumer string) string {
	return name + ":consumer:" + consumer
}

func (q *RedisQueue) heartbeat(ctx context.Context) error {
	return q.RDClient.Set(ctx, heartbeatKey(q.name, q.consumer), 1, q.heartbeatTTL).Err()
}

func (q *RedisQueue) Enqueue(ctx context.Context, body []byte) error {
	if err := q.RDClient.LPush(ctx, q.pendingKey, body).Err(); err != nil {
		return unavailable("enqueue", err)
	}
	return nil
}

func (q *RedisQueue) Consume(ctx context.Context) (Delivery, error) {
	if err := q.heartbeat(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, unavailable("heartbeat", err)
	}

	body, err := q.RDClient.BRPopLPush(ctx, q.pendingKey, q.processingKey, q.blockTimeout).Bytes()
	if err == redis.Nil {
		return nil, ErrEmpty
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, unavailable("consume", err)
	}
	return &redisDelivery{q: q, body: body}, nil
}

// Recover drains this consumer's processing list and the lists of every
// consumer whose heartbeat has expired.
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	if err := q.heartbeat(ctx); err != nil {
		return 0, unavailable("recover", err)
	}

	prefix := processingPrefix(q.name)
	moved := 0
	iter := q.RDClient.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		owner := strings.TrimPrefix(key, prefix)
		if owner != q.consumer {
			alive, err := q.RDClient.Exists(ctx, heartbeatKey(q.name, owner)).Result()
			if err != nil {
				return moved, unavailable("recover", err)
			}
			if alive > 0 {
				continue
			}
		}

		n, err := q.drain(ctx, key)
		moved += n
		if err != nil {
			return moved, err
		}
	}
	if err := iter.Err(); err != nil {
		return moved, unavailable("recover", err)
	}
	return moved, nil
}

func (q *RedisQueue) drain(ctx context.Context, key string) (int, error) {
	moved := 0
	for {
		err := q.RDClient.RPopLPush(ctx, key, q.pendingKey).Err()
		if err == redis.Nil {
			return moved, nil
		}
		if err != nil {
			return moved, unavailable("recover", err)
		}
		moved++
	}
}

func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.RDClient.LLen(ctx, q.pendingKey).Result()
	if err != nil {
		return 0, unavailable("length", err)
	}
	return n, nil
}

// Close drops the heartbeat so another consumer may recover anything left
// in flight right away, then closes the client.
func (q *RedisQueue) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.RDClient.Del(ctx, heartbeatKey(q.name, q.consumer))
	return q.RDClient.Close()
}

type redisDelivery struct {
	q    *RedisQueue
	body []byte
}

func (d *redisDelivery) Body() []byte {
	return d.body
}

func (d *redisDelivery) Ack(ctx context.Context) error {
	if err := d.q.RDClient.LRem(ctx, d.q.processingKey, 1, d.body).Err(); err != nil {
		return unavailable("ack", err)
	}
	return nil
}

func (d *redisDelivery) Requeue(ctx context.Context) error {
	_, err := d.q.RDClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, d.q.processingKey, 1, d.body)
		pipe.LPush(ctx, d.q.pendingKey, d.body)
		return nil
	})
	if err != nil {
		return unavailable("requeue", err)
	}
	return nil
}
