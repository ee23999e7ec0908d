// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package store

import (
	"context"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// SubmitterStore defines the submitter storage interface.
type SubmitterStore interface {
	// Create inserts the submitter unless the identifier already exists, in
	// which case the existing row is returned unchanged.
	Create(ctx context.Context, identifier string, whitelisted bool) (*v1.Submitter, error)
	Get(ctx context.Context, identifier string) (*v1.Submitter, error)
	List(ctx context.Context, opts metav1.ListOptions) ([]*v1.Submitter, error)
	SetFlags(ctx context.Context, identifier string, opts metav1.SetFlagsOptions) (*v1.Submitter, error)
	// Delete removes the submitter together with its sessions and packets.
	Delete(ctx context.Context, identifier string) (metav1.DeleteSubmitterResult, error)
	Snapshot(ctx context.Context) (map[string]v1.SubmitterIdentity, error)
	Count(ctx context.Context) (int64, error)
}
