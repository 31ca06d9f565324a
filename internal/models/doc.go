// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package models defines the data structures shared across MovieQueue.

Graph entities:

  - Movie: a (:Movie) node with optional rating/vote/runtime fields
  - Person: a (:Person) node with professions
  - Participation: a typed Person→Movie edge
  - Rating: a (:User)-[:RATED]->(:Movie) edge

Relationship taxonomy:

RelationshipType is the closed enumeration of participation edge types.
RoleTable resolves the configured category-label mapping and per-type scoring
coefficients, so classification during ingestion and weighting during
recommendation share one source of truth.

API types:

APIResponse, Metadata and APIError form the JSON envelope used by the HTTP
API.
*/
package models
