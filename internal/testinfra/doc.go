// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package testinfra starts a disposable Neo4j server with testcontainers-go
// for integration tests.
//
// Everything except this file is behind the integration build tag:
//
//	go test -tags integration ./internal/testinfra/...
//
// Example:
//
//	func TestSomething(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    db, err := testinfra.NewNeo4jContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, db)
//
//	    store, err := graph.NewNeo4jStore(ctx, db.Config())
//	    // ...
//	}
//
// Tests skip when no Docker daemon is reachable. The first run pulls the
// Neo4j image.
package testinfra
