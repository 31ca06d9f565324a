// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package graph

import "context"

// Record is one result row keyed by the RETURN aliases of a query.
// Records never leave this package undecoded: callers convert them into
// fixed types with the Decode helpers.
type Record map[string]any

// Query is a named, parameterized Cypher statement. Name labels metrics and
// log lines; it is never sent to the server.
type Query struct {
	Name   string
	Cypher string
	Params map[string]any
}

// Mode labels how a statement was executed.
const (
	ModeRead  = "read"
	ModeWrite = "write"
	ModeAuto  = "auto"
)

// Store is the synchronous request/response interface to the graph database.
//
// ExecuteRead and ExecuteWrite run the query inside a managed transaction
// that the driver retries on transient errors. Execute runs it as an
// auto-commit statement, which schema commands require.
type Store interface {
	Execute(ctx context.Context, q Query) ([]Record, error)
	ExecuteRead(ctx context.Context, q Query) ([]Record, error)
	ExecuteWrite(ctx context.Context, q Query) ([]Record, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
