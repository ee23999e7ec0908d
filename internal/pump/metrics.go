// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package pump

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// Metrics counts message outcomes and tracks processing latency.
type Metrics struct {
	processed  atomic.Uint64
	dropped    atomic.Uint64
	duplicates atomic.Uint64
	requeued   atomic.Uint64

	mu      sync.Mutex
	latency *ddsketch.DDSketch
}

func newMetrics() *Metrics {
	m := &Metrics{}
	// 1% relative accuracy
	if sketch, err := ddsketch.NewDefaultDDSketch(0.01); err == nil {
		m.latency = sketch
	}
	return m
}

func (m *Metrics) observe(d time.Duration) {
	if m.latency == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latency.Add(float64(d) / float64(time.Millisecond))
}

func (m *Metrics) quantile(q float64) float64 {
	if m.latency == nil || m.latency.IsEmpty() {
		return 0
	}
	v, err := m.latency.GetValueAtQuantile(q)
	if err != nil {
		return 0
	}
	return v
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() v1.PumpStats {
	m.mu.Lock()
	p50, p99 := m.quantile(0.5), m.quantile(0.99)
	m.mu.Unlock()

	return v1.PumpStats{
		Processed:    m.processed.Load(),
		Dropped:      m.dropped.Load(),
		Duplicates:   m.duplicates.Load(),
		Requeued:     m.requeued.Load(),
		LatencyP50Ms: p50,
		LatencyP99Ms: p99,
	}
}
