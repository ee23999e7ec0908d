// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package handler

import (
	"sync"

	"github.com/google/gopacket"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

// HeaderDecoder extracts the game header of a captured payload.
type HeaderDecoder interface {
	Decode(payload []byte) (GameHeader, error)
}

// LayerDecoder decodes headers with a gopacket DecodingLayerParser. Parsers
// are not safe for concurrent use, so each call borrows one from a pool.
type LayerDecoder struct {
	pool sync.Pool
}

type parserState struct {
	header  GameHeader
	payload gopacket.Payload
	parser  *gopacket.DecodingLayerParser
	decoded []gopacket.LayerType
}

func NewLayerDecoder() *LayerDecoder {
	d := &LayerDecoder{}
	d.pool.New = func() interface{} {
		s := &parserState{decoded: make([]gopacket.LayerType, 0, 2)}
		s.parser = gopacket.NewDecodingLayerParser(LayerTypeGameHeader, &s.header, &s.payload)
		s.parser.IgnoreUnsupported = true
		return s
	}
	return d
}

func (d *LayerDecoder) Decode(payload []byte) (GameHeader, error) {
	if len(payload) < HeaderLen {
		return GameHeader{}, errors.Malformed("payload of %d bytes is shorter than the %d byte header", len(payload), HeaderLen)
	}

	s := d.pool.Get().(*parserState)
	defer d.pool.Put(s)

	if err := s.parser.DecodeLayers(payload, &s.decoded); err != nil {
		return GameHeader{}, errors.Malformed("decode header: %v", err)
	}
	for _, typ := range s.decoded {
		if typ == LayerTypeGameHeader {
			return GameHeader{Type: s.header.Type, Size: s.header.Size}, nil
		}
	}
	return GameHeader{}, errors.Malformed("no game header found")
}
