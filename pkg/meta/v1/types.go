// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

// ObjectMeta is metadata that all persisted resources must have.
type ObjectMeta struct {
	ID int64 `json:"id"`
}

// ListOptions bounds list queries. A zero Limit means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// DeleteSubmitterResult reports how many rows a cascading delete removed.
type DeleteSubmitterResult struct {
	Submitters int64 `json:"submitters"`
	Sessions   int64 `json:"sessions"`
	Packets    int64 `json:"packets"`
}

// SetFlagsOptions carries the operator flag changes; nil leaves a flag as is.
type SetFlagsOptions struct {
	Whitelisted *bool `json:"whitelisted,omitempty"`
	Banned      *bool `json:"banned,omitempty"`
}
