// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package recommend ranks unrated movies for a user by the people they share
// with movies the user already rated.
//
// # Pipeline
//
// One Recommend call runs two graph reads and a pure scoring step:
//
//  1. RatedParticipations loads every rated movie with its collaborators.
//     AggregateInfluence turns that into a weight per (person, role) pair,
//     rating / max_rating summed over all rated movies.
//  2. Candidates selects unrated movies in the requested genres, most voted
//     first and capped in the query, then attaches genres and collaborators
//     to the capped id list only.
//  3. Scorer adds the collaboration, popularity, quality and genre terms,
//     ranks stably and Explain renders the reason clauses.
//
// # Errors
//
// When Neo4j aborts a read on its memory guards the engine returns an empty
// response with TooBroad set together with ErrSelectionTooBroad. Other store
// errors are wrapped and returned.
//
// # Usage
//
//	provider := recommend.NewGraphProvider(store, roles)
//	engine, err := recommend.NewEngine(recommend.FromAppConfig(cfg.Recommend), roles, provider)
//	sess, _ := session.New(ctx, "alice")
//	resp, err := engine.Recommend(ctx, sess, recommend.Request{Genres: []string{"Drama"}})
package recommend
