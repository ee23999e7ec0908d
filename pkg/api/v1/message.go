// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"time"

	"github.com/p1nant0m/packet-eater/internal/errors"
)

// UnknownClientVersion is stored when the client did not report a version.
const UnknownClientVersion = "Unknown"

// IngestMessage is the queue contract between the upload endpoint and the
// ingestion workers.
type IngestMessage struct {
	MessageID           string    `json:"message_id"`
	SubmitterIdentifier string    `json:"submitter_identifier"`
	PayloadBase64       string    `json:"payload_base64"`
	ZoneID              uint16    `json:"zone_id"`
	ClientVersion       string    `json:"client_version"`
	TimestampEpochMs    float64   `json:"timestamp_epoch_ms"`
	Direction           Direction `json:"direction"`
	Origin              Origin    `json:"origin"`
}

// wireIngestMessage mirrors IngestMessage with pointers so that field
// presence can be checked.
type wireIngestMessage struct {
	MessageID           *string  `json:"message_id"`
	SubmitterIdentifier *string  `json:"submitter_identifier"`
	PayloadBase64       *string  `json:"payload_base64"`
	ZoneID              *int64   `json:"zone_id"`
	ClientVersion       *string  `json:"client_version"`
	TimestampEpochMs    *float64 `json:"timestamp_epoch_ms"`
	Direction           *int64   `json:"direction"`
	Origin              *int64   `json:"origin"`
}

// DecodeIngestMessage parses and validates a queue message body. Every
// failure is an ErrMalformedPayload.
func DecodeIngestMessage(body []byte) (*IngestMessage, error) {
	var w wireIngestMessage
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, errors.Malformed("message is not valid json: %v", err)
	}

	switch {
	case w.MessageID == nil || *w.MessageID == "":
		return nil, errors.Malformed("missing message_id")
	case w.SubmitterIdentifier == nil || *w.SubmitterIdentifier == "":
		return nil, errors.Malformed("missing submitter_identifier")
	case w.PayloadBase64 == nil:
		return nil, errors.Malformed("missing payload_base64")
	case w.ZoneID == nil:
		return nil, errors.Malformed("missing zone_id")
	case w.TimestampEpochMs == nil:
		return nil, errors.Malformed("missing timestamp_epoch_ms")
	case w.Direction == nil:
		return nil, errors.Malformed("missing direction")
	case w.Origin == nil:
		return nil, errors.Malformed("missing origin")
	}

	if *w.ZoneID < 0 || *w.ZoneID > math.MaxUint16 {
		return nil, errors.Malformed("zone_id %d out of range", *w.ZoneID)
	}
	if d := *w.Direction; d != int64(ServerToClient) && d != int64(ClientToServer) {
		return nil, errors.Malformed("direction %d is neither 0 nor 1", d)
	}
	if *w.Origin < 0 || *w.Origin > math.MaxUint8 {
		return nil, errors.Malformed("origin %d out of range", *w.Origin)
	}
	ts := *w.TimestampEpochMs
	if math.IsNaN(ts) || math.IsInf(ts, 0) || ts <= 0 {
		return nil, errors.Malformed("timestamp_epoch_ms %v is not a positive time", ts)
	}

	msg := &IngestMessage{
		MessageID:           *w.MessageID,
		SubmitterIdentifier: *w.SubmitterIdentifier,
		PayloadBase64:       *w.PayloadBase64,
		ZoneID:              uint16(*w.ZoneID),
		ClientVersion:       UnknownClientVersion,
		TimestampEpochMs:    ts,
		Direction:           Direction(*w.Direction),
		Origin:              Origin(*w.Origin),
	}
	if w.ClientVersion != nil && *w.ClientVersion != "" {
		msg.ClientVersion = *w.ClientVersion
	}

	return msg, nil
}

// Encode renders the message body put on the queue.
func (m *IngestMessage) Encode() ([]byte, error) {
	return json.Marshal(m)
}

// Payload decodes the base64 payload.
func (m *IngestMessage) Payload() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(m.PayloadBase64)
	if err != nil {
		return nil, errors.Malformed("payload is not valid base64: %v", err)
	}
	return data, nil
}

// Timestamp converts the client epoch-millisecond timestamp.
func (m *IngestMessage) Timestamp() time.Time {
	return EpochMillis(m.TimestampEpochMs)
}

// EpochMillis converts fractional epoch milliseconds to a UTC time with
// microsecond precision.
func EpochMillis(ms float64) time.Time {
	return time.UnixMicro(int64(math.Round(ms * 1000))).UTC()
}
