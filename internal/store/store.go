// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package store

import "context"

// Factory is the entry point of the storage layer.
type Factory interface {
	Submitters() SubmitterStore
	Sessions() SessionStore
	Packets() PacketStore

	// Tx runs fn inside a single transaction. The Factory handed to fn is
	// bound to that transaction; returning an error rolls it back.
	Tx(ctx context.Context, fn func(Factory) error) error

	Close() error
}
