// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"github.com/p1nant0m/packet-eater/internal/admission"
	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/queue"
	"github.com/p1nant0m/packet-eater/internal/store"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// PumpStatser exposes the worker metrics.
type PumpStatser interface {
	Stats() v1.PumpStats
}

// Dependencies are the components the REST services are built on. Gate,
// Queue, Cache, Hints and Pump may be nil for services that do not need
// them.
type Dependencies struct {
	Store       store.Factory
	Queue       queue.Queue
	Gate        *admission.Gate
	Cache       *cache.Cache
	Hints       *cache.SessionHints
	Pump        PumpStatser
	RedactNames bool
}

type Service interface {
	Upload() UploadSrv
	Submitters() SubmitterSrv
	Stats() StatsSrv
}

type service struct {
	deps Dependencies
}

func NewService(deps Dependencies) Service {
	return &service{
		deps: deps,
	}
}

func (s *service) Upload() UploadSrv {
	return newUpload(s)
}

func (s *service) Submitters() SubmitterSrv {
	return newSubmitters(s)
}

func (s *service) Stats() StatsSrv {
	return newStats(s)
}
