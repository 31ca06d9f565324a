// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"context"
	"fmt"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/models"
)

const ratedParticipationsCypher = `
MATCH (u:User {username: $username})-[r:RATED]->(m:Movie)
OPTIONAL MATCH (p:Person)-[rel]->(m)
WHERE type(rel) IN $types
RETURN m.id AS movieId, r.rating AS rating,
       collect(CASE WHEN p IS NULL THEN NULL
               ELSE {id: p.id, name: p.name, type: type(rel)} END) AS collaborators`

// Phase one filters and caps on indexed properties only.
const candidateIDsCypher = `
MATCH (m:Movie)-[:HAS_GENRE]->(g:Genre)
WHERE g.name IN $genres
  AND NOT EXISTS { MATCH (:User {username: $username})-[:RATED]->(m) }
WITH DISTINCT m
ORDER BY coalesce(m.numVotes, 0) DESC, m.id ASC
LIMIT $limit
RETURN m.id AS id`

// Phase two attaches genres and collaborators to a bounded id list and
// returns rows in the order of $ids.
const candidateDetailsCypher = `
UNWIND range(0, size($ids) - 1) AS idx
WITH idx, $ids[idx] AS id
MATCH (m:Movie {id: id})
OPTIONAL MATCH (m)-[:HAS_GENRE]->(g:Genre)
WITH idx, m, collect(DISTINCT g.name) AS genres
OPTIONAL MATCH (p:Person)-[rel]->(m)
WHERE type(rel) IN $types
WITH idx, m, genres,
     collect(CASE WHEN p IS NULL THEN NULL
             ELSE {id: p.id, name: p.name, type: type(rel)} END) AS collaborators
RETURN m.id AS id, m.title AS title, m.year AS year,
       m.runtimeMinutes AS runtime, m.averageRating AS rating,
       m.numVotes AS votes, genres, collaborators
ORDER BY idx`

// GraphProvider reads rated movies and candidates from the graph store.
type GraphProvider struct {
	store graph.Store
	types []string
}

// NewGraphProvider creates a provider that only follows relationship types
// the role table recognizes.
func NewGraphProvider(store graph.Store, roles *models.RoleTable) *GraphProvider {
	if roles == nil {
		roles = models.DefaultRoleTable()
	}
	var types []string
	for _, t := range models.AllRelationshipTypes() {
		if roles.Recognized(t) {
			types = append(types, t.String())
		}
	}
	return &GraphProvider{store: store, types: types}
}

// RatedParticipations implements DataProvider.
func (p *GraphProvider) RatedParticipations(ctx context.Context, username string) ([]RatedMovie, error) {
	records, err := p.store.ExecuteRead(ctx, graph.Query{
		Name:   "rated_participations",
		Cypher: ratedParticipationsCypher,
		Params: map[string]any{"username": username, "types": p.types},
	})
	if err != nil {
		return nil, fmt.Errorf("read rated movies: %w", err)
	}

	rated := make([]RatedMovie, 0, len(records))
	for _, r := range records {
		var rm RatedMovie
		if rm.MovieID, err = graph.DecodeString(r, "movieId"); err != nil {
			return nil, err
		}
		if rm.Rating, err = graph.DecodeFloat(r, "rating"); err != nil {
			return nil, err
		}
		if rm.Collaborators, err = graph.DecodeCollaborators(r, "collaborators"); err != nil {
			return nil, err
		}
		rated = append(rated, rm)
	}
	return rated, nil
}

// Candidates implements DataProvider with a two-phase read: a cheap capped
// id selection followed by the attach query on at most limit ids.
func (p *GraphProvider) Candidates(ctx context.Context, username string, genres []string, limit int) ([]Candidate, error) {
	if len(genres) == 0 || limit <= 0 {
		return []Candidate{}, nil
	}

	idRecords, err := p.store.ExecuteRead(ctx, graph.Query{
		Name:   "candidate_ids",
		Cypher: candidateIDsCypher,
		Params: map[string]any{"username": username, "genres": genres, "limit": int64(limit)},
	})
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}
	ids := make([]string, 0, len(idRecords))
	for _, r := range idRecords {
		id, err := graph.DecodeString(r, "id")
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []Candidate{}, nil
	}

	records, err := p.store.ExecuteRead(ctx, graph.Query{
		Name:   "candidate_details",
		Cypher: candidateDetailsCypher,
		Params: map[string]any{"ids": ids, "types": p.types},
	})
	if err != nil {
		return nil, fmt.Errorf("attach candidate details: %w", err)
	}

	candidates := make([]Candidate, 0, len(records))
	for _, r := range records {
		movie, err := graph.DecodeMovie(r)
		if err != nil {
			return nil, err
		}
		collaborators, err := graph.DecodeCollaborators(r, "collaborators")
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, Candidate{Movie: movie, Collaborators: collaborators})
	}
	return candidates, nil
}
