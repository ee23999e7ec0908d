// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

var errQueueFull = errors.New("memory queue is full")

// MemoryQueue is an in-process broker with the same delivery contract as
// RedisQueue. Messages do not survive a restart.
type MemoryQueue struct {
	ch           chan []byte
	blockTimeout time.Duration

	mu       sync.Mutex
	seq      uint64
	inflight map[uint64][]byte
}

func NewMemory(buffer int, blockTimeout time.Duration) *MemoryQueue {
	if buffer <= 0 {
		buffer = 1
	}
	if blockTimeout <= 0 {
		blockTimeout = time.Second
	}
	return &MemoryQueue{
		ch:           make(chan []byte, buffer),
		blockTimeout: blockTimeout,
		inflight:     make(map[uint64][]byte),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, body []byte) error {
	select {
	case q.ch <- body:
		return nil
	case <-ctx.Done():
		return unavailable("enqueue", ctx.Err())
	default:
		return unavailable("enqueue", errQueueFull)
	}
}

func (q *MemoryQueue) Consume(ctx context.Context) (Delivery, error) {
	timer := time.NewTimer(q.blockTimeout)
	defer timer.Stop()

	select {
	case body := <-q.ch:
		q.mu.Lock()
		q.seq++
		id := q.seq
		q.inflight[id] = body
		q.mu.Unlock()
		return &memoryDelivery{q: q, id: id, body: body}, nil
	case <-timer.C:
		return nil, ErrEmpty
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *MemoryQueue) Recover(ctx context.Context) (int, error) {
	q.mu.Lock()
	bodies := make([][]byte, 0, len(q.inflight))
	for id, body := range q.inflight {
		bodies = append(bodies, body)
		delete(q.inflight, id)
	}
	q.mu.Unlock()

	for i, body := range bodies {
		select {
		case q.ch <- body:
		case <-ctx.Done():
			return i, unavailable("recover", ctx.Err())
		}
	}
	return len(bodies), nil
}

func (q *MemoryQueue) Len(ctx context.Context) (int64, error) {
	return int64(len(q.ch)), nil
}

// Close is a no-op; the channel stays open so late producers get an error
// from a full buffer rather than a panic.
func (q *MemoryQueue) Close() error {
	return nil
}

// InFlight returns the number of consumed but unacknowledged messages.
func (q *MemoryQueue) InFlight() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.inflight)
}

type memoryDelivery struct {
	q    *MemoryQueue
	id   uint64
	body []byte
}

func (d *memoryDelivery) Body() []byte {
	return d.body
}

func (d *memoryDelivery) Ack(ctx context.Context) error {
	d.q.mu.Lock()
	delete(d.q.inflight, d.id)
	d.q.mu.Unlock()
	return nil
}

func (d *memoryDelivery) Requeue(ctx context.Context) error {
	d.q.mu.Lock()
	delete(d.q.inflight, d.id)
	d.q.mu.Unlock()

	select {
	case d.q.ch <- d.body:
		return nil
	case <-ctx.Done():
		return unavailable("requeue", ctx.Err())
	}
}
