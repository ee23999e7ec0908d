// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package cache

import (
	"sync"
	"time"
)

type sessionHint struct {
	sessionID  int64
	lastUpdate time.Time
}

// SessionHints remembers the session each submitter last wrote to. The
// upload endpoint reports it as the likely destination of a new packet.
type SessionHints struct {
	mu     sync.RWMutex
	hints  map[string]sessionHint
	window time.Duration
}

func NewSessionHints(window time.Duration) *SessionHints {
	return &SessionHints{
		hints:  make(map[string]sessionHint),
		window: window,
	}
}

// Set records that identifier wrote to sessionID at lastUpdate. Older
// observations do not replace newer ones.
func (h *SessionHints) Set(identifier string, sessionID int64, lastUpdate time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.hints[identifier]; ok && cur.lastUpdate.After(lastUpdate) {
		return
	}
	h.hints[identifier] = sessionHint{sessionID: sessionID, lastUpdate: lastUpdate}
}

// Lookup returns the session a packet captured at ts would join, if the
// last known session is still inside the reconciliation window.
func (h *SessionHints) Lookup(identifier string, ts time.Time) (int64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cur, ok := h.hints[identifier]
	if !ok || ts.Sub(cur.lastUpdate) >= h.window {
		return 0, false
	}
	return cur.sessionID, true
}

func (h *SessionHints) Remove(identifier string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.hints, identifier)
}
