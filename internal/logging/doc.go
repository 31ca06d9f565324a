// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package logging provides centralized zerolog-based structured logging for MovieQueue.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Int("movies", n).Msg("Selection complete")
//	logging.Err(err).Str("relationship", "ACTED_IN").Msg("Load failed")
//
//	// Per-request logging carries the request_id placed by the HTTP middleware
//	logging.Ctx(ctx).Info().Msg("Recommendations served")
//
// # Configuration
//
// Environment Variables (through internal/config):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Components
//
// Long-lived components create a child logger once:
//
//	logger := logging.WithComponent("recommend")
//
// # slog bridge
//
// The supervisor tree logs through sutureslog, which takes a *slog.Logger.
// NewSlogLogger returns one that writes through zerolog.
package logging
