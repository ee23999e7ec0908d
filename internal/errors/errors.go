// Copyright 2022 p1nant0m <wgblike@gmail.com>. All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package errors holds the error taxonomy shared by the admission path and
// the ingestion workers.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedPayload marks a message or upload that can never be
	// processed: bad base64, missing fields, or a header shorter than 2 bytes.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrUnknownSubmitter means a worker received an identifier with no
	// submitter row. Admission always creates the row before enqueue, so this
	// points at an ordering bug rather than a transient condition.
	ErrUnknownSubmitter = errors.New("unknown submitter")

	// ErrStorageUnavailable wraps connection and transaction failures.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrQueueUnavailable wraps broker failures.
	ErrQueueUnavailable = errors.New("queue unavailable")

	ErrForbidden    = errors.New("submitter is banned")
	ErrUnauthorized = errors.New("submitter is not yet whitelisted")

	ErrDuplicateMessage = errors.New("message already persisted")
	ErrNotFound         = errors.New("not found")
	ErrInvalidConfig    = errors.New("invalid configuration")
)

// Is is a convenience wrapper for errors.Is
var Is = errors.Is

// As is a convenience wrapper for errors.As
var As = errors.As

// New is a convenience wrapper for errors.New
var New = errors.New

// IsTransient reports whether a failed message should be left for
// redelivery.
func IsTransient(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrQueueUnavailable)
}

// IsPolicy reports whether err is an admission policy rejection.
func IsPolicy(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized)
}

// IsPermanent reports whether retrying the message can never succeed.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrMalformedPayload) ||
		errors.Is(err, ErrUnknownSubmitter) ||
		errors.Is(err, ErrDuplicateMessage)
}

// Wrap annotates err with a message while keeping it matchable.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with formatting.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Malformed builds an ErrMalformedPayload with a reason.
func Malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}

// Storage classifies err as a storage failure.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrStorageUnavailable, err)
}
