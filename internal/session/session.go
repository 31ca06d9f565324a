// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package session carries the identity of the caller through recommendation
// and rating operations as an explicit value.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/moviequeue/internal/logging"
)

// ErrNoUser is returned when a session has no username.
var ErrNoUser = errors.New("session: username is required")

// Session identifies who is asking and which request this is.
type Session struct {
	Username  string
	RequestID string
	StartedAt time.Time
}

// New builds a session for username, taking the request id from ctx when
// one is present.
func New(ctx context.Context, username string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Session{}, ErrNoUser
	}
	id := logging.RequestIDFromContext(ctx)
	if id == "" {
		id = logging.GenerateRequestID()
	}
	return Session{Username: username, RequestID: id, StartedAt: time.Now()}, nil
}

// Validate reports whether s can be used for a user-scoped operation.
func (s Session) Validate() error {
	if strings.TrimSpace(s.Username) == "" {
		return ErrNoUser
	}
	return nil
}

// Elapsed returns the time since the session started.
func (s Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}
