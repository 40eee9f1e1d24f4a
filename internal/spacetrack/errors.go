// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package spacetrack

import (
	"errors"
	"fmt"
)

var (
	// Sentinel errors for errors.Is checks at the HTTP boundary.
	ErrNotConfigured = errors.New("spacetrack: credentials not configured")
	ErrLoginFailed   = errors.New("spacetrack: login failed")
	ErrQueryFailed   = errors.New("spacetrack: query failed")
	ErrInvalidQuery  = errors.New("spacetrack: invalid query")
)

// Operation names used in errors, logs, metrics and spans.
const (
	OpLogin = "login"
	OpQuery = "query"
)

// Error wraps a sentinel with the failing operation, the upstream status
// (0 when no response was received) and the lower-level cause.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Err       error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%v (%s)", e.Sentinel, e.Operation)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s: HTTP %d", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// ErrQueryFailed as well as context.Canceled.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// UpstreamStatus returns the HTTP status carried by err, or 0.
func UpstreamStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
