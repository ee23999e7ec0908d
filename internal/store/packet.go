// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package store

import (
	"context"

	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// PacketStore defines the packet storage interface.
type PacketStore interface {
	// Create fails with ErrDuplicateMessage when the message id was
	// already stored.
	Create(ctx context.Context, packet *v1.PacketRecord) error
	ListBySession(ctx context.Context, sessionID int64, opts metav1.ListOptions) ([]*v1.PacketRecord, error)
	Count(ctx context.Context) (int64, error)
	// TotalBytes sums the decoded header sizes of all packets.
	TotalBytes(ctx context.Context) (int64, error)
}
