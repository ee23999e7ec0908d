// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/p1nant0m/packet-eater/handler/utils"
	"github.com/p1nant0m/packet-eater/internal/store"
	"github.com/p1nant0m/packet-eater/perf"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

const emptySummary = "No packets have been submitted yet! :("

var exclamations = []string{
	"yum", "delicious", "tasty", "scrumptious", "nice", "delectable", "cool",
	"awesome", "neat", "rad", "fantastic", "amazing", "wonderful", "superb",
	"excellent", "terrific", "outstanding", "marvelous", "fabulous", "splendid",
	"magnificent", "phenomenal", "remarkable", "incredible", "unbelievable",
	"extraordinary", "spectacular", "stupendous", "egad", "golly", "gosh", "gee",
	"wow", "holy cow", "holy moly", "holy guacamole", "holy smokes", "phwoar",
	"blimey", "crikey", "cor", "flippin' heck", "chunky", "funky", "groovy",
	"far out", "hooray", "ohohohoho",
}

type StatsSrv interface {
	Get(ctx context.Context) (*v1.Stats, error)
}

type statsService struct {
	store store.Factory
	pump  PumpStatser
}

func newStats(srv *service) *statsService {
	return &statsService{store: srv.deps.Store, pump: srv.deps.Pump}
}

func (s *statsService) Get(ctx context.Context) (*v1.Stats, error) {
	stats := &v1.Stats{}

	var err error
	if stats.Packets, err = s.store.Packets().Count(ctx); err != nil {
		return nil, err
	}
	if stats.PacketBytes, err = s.store.Packets().TotalBytes(ctx); err != nil {
		return nil, err
	}
	if stats.Submitters, err = s.store.Submitters().Count(ctx); err != nil {
		return nil, err
	}
	if stats.Sessions, err = s.store.Sessions().Count(ctx); err != nil {
		return nil, err
	}

	stats.PacketBytesHuman = utils.HumanReadableSize(stats.PacketBytes)
	stats.Summary = Summary(stats.Packets, stats.Submitters, stats.PacketBytes, exclamations[rand.Intn(len(exclamations))])
	if s.pump != nil {
		pumpStats := s.pump.Stats()
		stats.Pump = &pumpStats
	}
	stats.Host = perf.GetHostInfo()

	return stats, nil
}

// Summary renders the one line description shown on the packets page.
func Summary(packets, submitters, bytes int64, exclamation string) string {
	if packets == 0 || submitters == 0 {
		return emptySummary
	}
	return fmt.Sprintf("I have eaten %d packet%s from %d submitter%s (%s), %s!",
		packets, plural(packets), submitters, plural(submitters), utils.HumanReadableSize(bytes), exclamation)
}

func plural(n int64) string {
	if n > 1 {
		return "s"
	}
	return ""
}
