// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package spacetrack

import (
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/eosvc/internal/platform/httpx"
)

// Session is a cookie-bearing HTTP client shared by all upstream calls.
// The cookie jar and transport are safe for concurrent use.
type Session struct {
	client  *http.Client
	created time.Time
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newSession(timeout time.Duration) *Session {
	return &Session{
		client:  httpx.NewSessionClient(timeout),
		created: time.Now(),
		timeout: timeout,
	}
}

// Client returns the underlying HTTP client.
func (s *Session) Client() *http.Client {
	return s.client
}

// Created reports when the session was built.
func (s *Session) Created() time.Time {
	return s.created
}

// Timeout is the per-request timeout the session was built with.
func (s *Session) Timeout() time.Duration {
	return s.timeout
}

// Close releases pooled connections. A closed session is replaced on the
// next Gateway.Session call. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.client.CloseIdleConnections()
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
