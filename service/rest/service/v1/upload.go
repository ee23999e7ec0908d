// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

import (
	"bytes"
	"context"
	"encoding/base64"

	"github.com/google/uuid"

	"github.com/p1nant0m/packet-eater/handler"
	"github.com/p1nant0m/packet-eater/internal/admission"
	"github.com/p1nant0m/packet-eater/internal/cache"
	"github.com/p1nant0m/packet-eater/internal/errors"
	"github.com/p1nant0m/packet-eater/internal/queue"
	v1 "github.com/p1nant0m/packet-eater/pkg/api/v1"
)

type UploadSrv interface {
	// Upload admits origin and enqueues the capture. Policy rejections come
	// back as ErrForbidden or ErrUnauthorized.
	Upload(ctx context.Context, origin string, req *v1.UploadRequest) (*v1.UploadResponse, error)
}

type uploadService struct {
	gate   *admission.Gate
	queue  queue.Queue
	hints  *cache.SessionHints
	redact bool
}

func newUpload(srv *service) *uploadService {
	return &uploadService{
		gate:   srv.deps.Gate,
		queue:  srv.deps.Queue,
		hints:  srv.deps.Hints,
		redact: srv.deps.RedactNames,
	}
}

func (u *uploadService) Upload(ctx context.Context, origin string, req *v1.UploadRequest) (*v1.UploadResponse, error) {
	res, err := u.gate.Admit(ctx, origin)
	if err != nil {
		return nil, err
	}

	payload, err := base64.StdEncoding.DecodeString(req.Payload)
	if err != nil {
		return nil, errors.Malformed("payload is not valid base64: %v", err)
	}
	if u.redact {
		RedactName(payload, req.Name)
	}

	msg := &v1.IngestMessage{
		MessageID:           uuid.NewString(),
		SubmitterIdentifier: res.Identifier,
		PayloadBase64:       base64.StdEncoding.EncodeToString(payload),
		ZoneID:              uint16(*req.ZoneID),
		ClientVersion:       req.Version,
		TimestampEpochMs:    *req.Timestamp,
		Direction:           v1.Direction(*req.Direction),
		Origin:              v1.Origin(*req.Origin),
	}
	if msg.ClientVersion == "" {
		msg.ClientVersion = v1.UnknownClientVersion
	}

	body, err := msg.Encode()
	if err != nil {
		return nil, err
	}
	if err := u.queue.Enqueue(ctx, body); err != nil {
		return nil, err
	}

	resp := &v1.UploadResponse{
		Status:              v1.StatusQueued,
		SubmitterIdentifier: res.Identifier,
		MessageID:           msg.MessageID,
	}
	if u.hints != nil {
		if id, ok := u.hints.Lookup(res.Identifier, msg.Timestamp()); ok {
			resp.CaptureSessionIdentifier = &id
		}
	}
	return resp, nil
}

// RedactName zeroes every occurrence of name in the packet body. The
// header is left alone so the packet can still be decoded.
func RedactName(payload []byte, name string) {
	if name == "" || len(payload) <= handler.HeaderLen {
		return
	}
	needle := []byte(name)
	body := payload[handler.HeaderLen:]
	for {
		i := bytes.Index(body, needle)
		if i < 0 {
			return
		}
		for j := range needle {
			body[i+j] = 0
		}
		body = body[i+len(needle):]
	}
}
