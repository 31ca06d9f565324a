// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package metrics provides Prometheus metrics for MovieQueue.

Metrics are registered with promauto on package load and exposed at /metrics
by the API server:

	curl http://localhost:8484/metrics

Families:

  - neo4j_query_*: graph store latency and classified errors
  - circuit_breaker_*: state of the breaker guarding the graph store
  - api_*: HTTP request counts, latency and in-flight gauge
  - ingest_*: rows read/dropped per source, batch upsert timing and failures
  - recommend_*: request outcomes (success, empty, too_broad, error),
    latency, candidate counts and cache efficiency
  - ratings_submitted_total: rating submissions by discovery method
*/
package metrics
