// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package admission decides whether an upload may be enqueued.
package admission

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/log"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// firstContactTimeout bounds the shared submitter creation, which no longer
// follows any single request's cancellation.
const firstContactTimeout = 10 * time.Second

// SubmitterCreator is the slice of the submitter store the gate needs.
type SubmitterCreator interface {
	Create(ctx context.Context, identifier string, whitelisted bool) (*v1.Submitter, error)
}

// IdentityCache is the slice of the submitter cache the gate needs.
type IdentityCache interface {
	Get(identifier string) (v1.SubmitterIdentity, bool)
	Put(id v1.SubmitterIdentity)
}

// Result is the outcome of one admission check.
type Result struct {
	Identifier string
	Allowed    bool
	// Reason is one of the upload status strings when Allowed is false.
	Reason string
}

type Gate struct {
	cache      IdentityCache
	submitters SubmitterCreator
	group      singleflight.Group
	log        *logrus.Entry
}

func NewGate(cache IdentityCache, submitters SubmitterCreator) *Gate {
	return &Gate{
		cache:      cache,
		submitters: submitters,
		log:        log.Component("admission"),
	}
}

// Admit resolves the submitter of origin, creating it on first contact.
// A banned submitter yields ErrForbidden and one that is not whitelisted
// yields ErrUnauthorized; the Result is filled in either case.
func (g *Gate) Admit(ctx context.Context, origin string) (Result, error) {
	addr, err := ParseOrigin(origin)
	if err != nil {
		return Result{}, err
	}
	identifier := Identifier(addr)

	id, ok := g.cache.Get(identifier)
	if !ok {
		id, err = g.firstContact(ctx, identifier, IsLocal(addr))
		if err != nil {
			return Result{Identifier: identifier}, err
		}
	}

	switch {
	case id.Banned:
		return Result{Identifier: identifier, Reason: v1.StatusBanned}, errors.ErrForbidden
	case !id.Whitelisted:
		return Result{Identifier: identifier, Reason: v1.StatusNotWhitelisted}, errors.ErrUnauthorized
	}
	return Result{Identifier: identifier, Allowed: true}, nil
}

// firstContact creates the submitter row and makes it visible in the cache.
// Concurrent first contacts from one origin share a single storage call.
func (g *Gate) firstContact(ctx context.Context, identifier string, local bool) (v1.SubmitterIdentity, error) {
	v, err, _ := g.group.Do(identifier, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), firstContactTimeout)
		defer cancel()

		if id, ok := g.cache.Get(identifier); ok {
			return id, nil
		}

		sub, err := g.submitters.Create(ctx, identifier, local)
		if err != nil {
			return nil, err
		}
		id := sub.Identity()
		g.cache.Put(id)

		g.log.WithFields(logrus.Fields{
			"identifier":  identifier,
			"whitelisted": id.Whitelisted,
		}).Info("registered new submitter")
		return id, nil
	})
	if err != nil {
		return v1.SubmitterIdentity{}, err
	}
	return v.(v1.SubmitterIdentity), nil
}
