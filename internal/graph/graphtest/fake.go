// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package graphtest provides an in-memory graph.Store for unit tests.
package graphtest

import (
	"context"
	"sync"

	"github.com/tomtom215/moviequeue/internal/graph"
)

// Call is one statement seen by the fake.
type Call struct {
	Mode  string
	Query graph.Query
}

// Store records every call and answers through Handler. A nil Handler
// returns no records.
type Store struct {
	Handler func(ctx context.Context, mode string, q graph.Query) ([]graph.Record, error)
	PingErr error

	mu     sync.Mutex
	calls  []Call
	closed bool
}

func (s *Store) do(ctx context.Context, mode string, q graph.Query) ([]graph.Record, error) {
	s.mu.Lock()
	s.calls = append(s.calls, Call{Mode: mode, Query: q})
	handler := s.Handler
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if handler == nil {
		return nil, nil
	}
	return handler(ctx, mode, q)
}

func (s *Store) Execute(ctx context.Context, q graph.Query) ([]graph.Record, error) {
	return s.do(ctx, graph.ModeAuto, q)
}

func (s *Store) ExecuteRead(ctx context.Context, q graph.Query) ([]graph.Record, error) {
	return s.do(ctx, graph.ModeRead, q)
}

func (s *Store) ExecuteWrite(ctx context.Context, q graph.Query) ([]graph.Record, error) {
	return s.do(ctx, graph.ModeWrite, q)
}

func (s *Store) Ping(context.Context) error {
	return s.PingErr
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Calls returns a copy of the recorded calls.
func (s *Store) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsNamed returns the recorded calls whose query has the given name.
func (s *Store) CallsNamed(name string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Query.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
