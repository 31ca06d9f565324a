// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package ingest turns the public IMDb TSV dumps into graph data.

Ingestion runs in two commands. Build reads title.basics, title.ratings,
title.principals and name.basics, keeps the top K movies of every genre by
vote count, classifies principal rows into typed relationships and writes
the intermediate files:

	<output_dir>/movies.jsonl
	<output_dir>/people.jsonl
	<output_dir>/<TYPE>.tsv      one file per relationship type

Load applies those files to Neo4j through the Upserter. Every chunk is one
UNWIND ... MERGE ... ON CREATE SET statement in its own write transaction,
so a failed load can be re-run from the start, or resumed from the last
completed stage recorded by a ProgressTracker (BadgerDB or in-memory).

Relationship types load in parallel, bounded by ingest.parallelism. Chunks
within one type are applied in order.
*/
package ingest
