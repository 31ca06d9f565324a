// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package graph is the only package that talks to Neo4j.

Store is a synchronous request/response interface: a named Cypher Query goes
in, a slice of Records comes out. Neo4jStore implements it with the official
driver (managed read/write transactions, a per-transaction timeout, Prometheus
timings per query name). BreakerStore wraps any Store with a gobreaker circuit.

Memory-limit failures reported by the server are converted to
ErrResourceExhausted inside the transaction function so the driver does not
retry them, and the breaker does not count them against store health.

Records are untyped maps; the Decode helpers turn them into fixed Go types so
that no other package handles raw driver values.
*/
package graph
