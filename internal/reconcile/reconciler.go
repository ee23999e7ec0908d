// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package reconcile groups the packets of a submitter into capture
// sessions separated by idle gaps.
package reconcile

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/log"
	"github.com/p1nant0m/packet-eater/internal/store"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

// DefaultWindow is the idle gap that closes a capture session.
const DefaultWindow = 10 * time.Second

type Reconciler struct {
	window time.Duration
	locks  *KeyLock
	log    *logrus.Entry
}

func New(window time.Duration) *Reconciler {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Reconciler{
		window: window,
		locks:  NewKeyLock(),
		log:    log.Component("reconcile"),
	}
}

func (r *Reconciler) Window() time.Duration {
	return r.window
}

// Serialize runs fn while holding the lock of the submitter identifier.
// The read-decide-write sequence of Reconcile must run inside it.
func (r *Reconciler) Serialize(identifier string, fn func() error) error {
	unlock := r.locks.Lock(identifier)
	defer unlock()
	return fn()
}

// Reconcile returns the session a packet captured at ts belongs to. A new
// session starts when the submitter has none or the latest one has been
// idle for at least the window; otherwise the latest session is touched.
// The returned bool reports whether a session was created.
func (r *Reconciler) Reconcile(ctx context.Context, sessions store.SessionStore, submitterID int64, ts time.Time, clientVersion string) (*v1.CaptureSession, bool, error) {
	latest, err := sessions.Latest(ctx, submitterID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, false, err
	}

	if latest == nil || latest.IdleFor(ts) >= r.window {
		session := &v1.CaptureSession{
			SubmitterID:    submitterID,
			StartTime:      ts,
			LastUpdateTime: ts,
			ClientVersion:  clientVersion,
		}
		if err := sessions.Create(ctx, session); err != nil {
			return nil, false, err
		}

		fields := logrus.Fields{"submitter_id": submitterID, "session_id": session.ID}
		if latest != nil {
			fields["idle"] = latest.IdleFor(ts)
		}
		r.log.WithFields(fields).Debug("opened capture session")
		return session, true, nil
	}

	if err := sessions.Touch(ctx, latest.ID, ts); err != nil {
		return nil, false, err
	}
	if ts.After(latest.LastUpdateTime) {
		latest.LastUpdateTime = ts
	}
	return latest, false, nil
}
