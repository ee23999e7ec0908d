// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package handler

import (
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

// HeaderLen is the number of leading payload bytes that carry the header.
const HeaderLen = 2

var LayerTypeGameHeader = gopacket.RegisterLayerType(2901, gopacket.LayerTypeMetadata{
	Name:    "GameHeader",
	Decoder: gopacket.DecodeFunc(decodeGameHeader),
})

// GameHeader is the two byte header at the start of every captured game
// packet. Type is the low byte plus the lowest bit of the second byte and
// Size is the second byte with that bit cleared.
type GameHeader struct {
	layers.BaseLayer
	Type uint16
	Size uint16
}

func (h *GameHeader) LayerType() gopacket.LayerType { return LayerTypeGameHeader }

func (h *GameHeader) CanDecode() gopacket.LayerClass { return LayerTypeGameHeader }

func (h *GameHeader) NextLayerType() gopacket.LayerType { return gopacket.LayerTypePayload }

func (h *GameHeader) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	if len(data) < HeaderLen {
		df.SetTruncated()
		return fmt.Errorf("game header needs %d bytes, got %d", HeaderLen, len(data))
	}
	h.Type = uint16(data[0]) | uint16(data[1]&0x01)
	h.Size = uint16(data[1] & 0xFE)
	h.BaseLayer = layers.BaseLayer{Contents: data[:HeaderLen], Payload: data[HeaderLen:]}
	return nil
}

func decodeGameHeader(data []byte, p gopacket.PacketBuilder) error {
	h := &GameHeader{}
	if err := h.DecodeFromBytes(data, p); err != nil {
		return err
	}
	p.AddLayer(h)
	return p.NextDecoder(h.NextLayerType())
}

// DecodeHeader returns the packet type and size encoded in payload.
func DecodeHeader(payload []byte) (typ, size uint16, err error) {
	var h GameHeader
	if err := h.DecodeFromBytes(payload, gopacket.NilDecodeFeedback); err != nil {
		return 0, 0, errors.Malformed("%v", err)
	}
	return h.Type, h.Size, nil
}
