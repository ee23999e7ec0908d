// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// Submitter is the identity record of one network origin.
type Submitter struct {
	metav1.ObjectMeta
	Identifier  string `json:"identifier"`
	Whitelisted bool   `json:"whitelisted"`
	Banned      bool   `json:"banned"`
}

// SubmitterIdentity is the fixed-shape view of a submitter shared by the
// cache and the admission gate.
type SubmitterIdentity struct {
	Identifier  string `json:"identifier"`
	Whitelisted bool   `json:"whitelisted"`
	Banned      bool   `json:"banned"`
}

func (s *Submitter) Identity() SubmitterIdentity {
	return SubmitterIdentity{
		Identifier:  s.Identifier,
		Whitelisted: s.Whitelisted,
		Banned:      s.Banned,
	}
}
