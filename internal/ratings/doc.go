// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package ratings records user ratings as (:User)-[:RATED]->(:Movie) edges
// and summarizes them for the analytics view.
//
// A submission is one idempotent MERGE per user and movie; resubmitting
// overwrites rating, discovery method and timestamp. Every successful
// submission invalidates the user's cached recommendations.
package ratings
