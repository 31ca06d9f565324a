// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Command moviequeue ingests IMDb TSV dumps into Neo4j and serves
// graph-based movie recommendations.
//
// # Commands
//
//	moviequeue ingest                  # raw TSV -> selected movies + relationship files
//	moviequeue load [--resume]         # relationship files -> Neo4j
//	moviequeue run [--resume]          # ingest, then load
//	moviequeue serve                   # HTTP API under a supervisor tree
//	moviequeue recommend --user alice --genre Crime --genre Drama
//	moviequeue rate --user alice --movie tt0113277 --rating 9 --discovery "Social Media"
//	moviequeue version
//
// # Configuration
//
// Settings are layered with Koanf v2 (highest priority wins):
//   - Environment variables (NEO4J_URI, NEO4J_PASSWORD, INGEST_TOP_K, HTTP_PORT, ...)
//   - Config file (--config, CONFIG_PATH, or ./config.yaml)
//   - Built-in defaults
//
// --log-level overrides the configured level for a single invocation.
//
// # Signals
//
// SIGINT and SIGTERM cancel the running command. A canceled load keeps its
// checkpoint, so `moviequeue load --resume` continues after the last
// finished stage.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/moviequeue/internal/logging"
)

// Set with -ldflags "-X main.version=..." at build time.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("moviequeue failed")
		stop()
		os.Exit(1)
	}
}
