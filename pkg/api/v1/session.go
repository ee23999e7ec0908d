// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"time"

	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// CaptureSession is a bounded run of packets from one submitter.
type CaptureSession struct {
	metav1.ObjectMeta
	SubmitterID    int64     `json:"submitter_id"`
	StartTime      time.Time `json:"start_time"`
	LastUpdateTime time.Time `json:"last_update_time"`
	ClientVersion  string    `json:"client_version"`
}

// IdleFor returns how long the session has been idle at t.
func (s *CaptureSession) IdleFor(t time.Time) time.Duration {
	return t.Sub(s.LastUpdateTime)
}
