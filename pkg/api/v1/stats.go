// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

// Stats aggregates storage counters, worker metrics and host information.
type Stats struct {
	Summary          string     `json:"summary"`
	Packets          int64      `json:"packets"`
	PacketBytes      int64      `json:"packet_bytes"`
	PacketBytesHuman string     `json:"packet_bytes_human"`
	Submitters       int64      `json:"submitters"`
	Sessions         int64      `json:"sessions"`
	Pump             *PumpStats `json:"pump,omitempty"`
	Host             *HostInfo  `json:"host,omitempty"`
}

// PumpStats is a point-in-time view of the ingestion workers.
type PumpStats struct {
	Processed    uint64  `json:"processed"`
	Dropped      uint64  `json:"dropped"`
	Duplicates   uint64  `json:"duplicates"`
	Requeued     uint64  `json:"requeued"`
	LatencyP50Ms float64 `json:"latency_p50_ms"`
	LatencyP99Ms float64 `json:"latency_p99_ms"`
}

type HostInfo struct {
	Hostname string  `json:"hostname"`
	Platform string  `json:"platform"`
	Uptime   uint64  `json:"uptime_seconds"`
	MemUsage float64 `json:"memusage"`
}
