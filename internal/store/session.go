// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package store

import (
	"context"
	"time"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// SessionStore defines the capture session storage interface.
type SessionStore interface {
	// Latest returns the session of the submitter with the greatest
	// last update time, or ErrNotFound.
	Latest(ctx context.Context, submitterID int64) (*v1.CaptureSession, error)
	Create(ctx context.Context, session *v1.CaptureSession) error
	// Touch moves last_update_time forward to ts. It never moves it back.
	Touch(ctx context.Context, id int64, ts time.Time) error
	Get(ctx context.Context, id int64) (*v1.CaptureSession, error)
	ListBySubmitter(ctx context.Context, submitterID int64, opts metav1.ListOptions) ([]*v1.CaptureSession, error)
	Count(ctx context.Context) (int64, error)
}
