// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package services adapts MovieQueue components to suture.Service.

HTTPServerService turns http.Server's blocking ListenAndServe into a
context-aware Serve with graceful Shutdown.

HealthProbeService pings the graph store on an interval, publishes the
result as the neo4j_up gauge and logs state changes. It returns an error
after too many consecutive failures so the supervisor restarts it with
backoff.

Both implement fmt.Stringer; suture uses the name in its event log.
*/
package services
