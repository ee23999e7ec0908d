// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"fmt"
	"time"

	metav1 "github.com/p1nant0m/packet-eater/pkg/meta/v1"
)

// Direction of a captured packet.
type Direction uint8

const (
	ServerToClient Direction = 0
	ClientToServer Direction = 1
)

func (d Direction) Valid() bool {
	return d == ServerToClient || d == ClientToServer
}

func (d Direction) String() string {
	switch d {
	case ServerToClient:
		return "S2C"
	case ClientToServer:
		return "C2S"
	default:
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
}

// Origin identifies the client program that captured the packet.
type Origin uint8

const (
	OriginAshitaV3   Origin = 0
	OriginAshitaV4   Origin = 1
	OriginWindowerV4 Origin = 2
	OriginWindowerV5 Origin = 3
)

func (o Origin) String() string {
	switch o {
	case OriginAshitaV3:
		return "Ashita_v3"
	case OriginAshitaV4:
		return "Ashita_v4"
	case OriginWindowerV4:
		return "Windower_v4"
	case OriginWindowerV5:
		return "Windower_v5"
	default:
		return fmt.Sprintf("Origin(%d)", uint8(o))
	}
}

// PacketRecord is one persisted packet observation. Type and Size are
// derived from Data by the header decoder.
type PacketRecord struct {
	metav1.ObjectMeta
	SessionID int64     `json:"session_id"`
	MessageID string    `json:"message_id"`
	Data      []byte    `json:"data"`
	Timestamp time.Time `json:"timestamp"`
	Type      uint16    `json:"type"`
	Size      uint16    `json:"size"`
	Direction Direction `json:"direction"`
	ZoneID    uint16    `json:"zone_id"`
	Origin    Origin    `json:"origin"`
}
