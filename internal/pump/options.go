// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package pump

import (
	"fmt"
	"time"

	"github.com/p1nant0m/packet-eater/handler"
	"github.com/p1nant0m/packet-eater/internal/cache"
)

// Option configures a Pump.
type Option func(*Pump) error

func WithWorkers(n int) Option {
	return func(p *Pump) error {
		if n <= 0 {
			return fmt.Errorf("worker count must be positive, got %d", n)
		}
		p.workers = n
		return nil
	}
}

// WithRetryBackoff sets the pause before a transiently failed message is
// handed back to the queue.
func WithRetryBackoff(d time.Duration) Option {
	return func(p *Pump) error {
		if d < 0 {
			return fmt.Errorf("retry backoff must not be negative, got %v", d)
		}
		p.retryBackoff = d
		return nil
	}
}

func WithDecoder(d handler.HeaderDecoder) Option {
	return func(p *Pump) error {
		p.decoder = d
		return nil
	}
}

// WithSessionHints makes the pump publish the session of every stored
// packet.
func WithSessionHints(h *cache.SessionHints) Option {
	return func(p *Pump) error {
		p.hints = h
		return nil
	}
}
