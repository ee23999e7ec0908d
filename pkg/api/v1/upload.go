// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package v1

// UploadRequest is the body the capture clients PUT/POST to /upload.
type UploadRequest struct {
	// Name is the character name; it is only used for redaction and is
	// never enqueued.
	Name      string   `json:"name"`
	ZoneID    *int64   `json:"zone_id" binding:"required,min=0,max=65535"`
	Version   string   `json:"version"`
	Payload   string   `json:"payload" binding:"required"`
	Timestamp *float64 `json:"timestamp" binding:"required,gt=0"`
	Direction *int64   `json:"direction" binding:"required,min=0,max=1"`
	Origin    *int64   `json:"origin" binding:"required,min=0,max=255"`
}

const (
	StatusQueued         = "queued"
	StatusBanned         = "banned"
	StatusNotWhitelisted = "not yet whitelisted"
	StatusInvalid        = "invalid"
	StatusError          = "error"
)

// UploadResponse is returned with 202 Accepted.
type UploadResponse struct {
	Status              string `json:"status"`
	SubmitterIdentifier string `json:"submitter_identifier"`
	// CaptureSessionIdentifier is the session the submitter's previous
	// packet landed in, if this process has seen one. The packet being
	// uploaded may still open a new session.
	CaptureSessionIdentifier *int64 `json:"capture_session_identifier,omitempty"`
	MessageID                string `json:"message_id"`
}

// StatusResponse is the body of every non-202 answer.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
