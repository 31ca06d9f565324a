// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

// Package catalog provides read-only browsing of the loaded movie graph.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/models"
)

const (
	// DefaultSearchLimit applies when a search asks for no limit.
	DefaultSearchLimit = 20

	// MaxSearchLimit caps a single search.
	MaxSearchLimit = 100
)

const listGenresCypher = `
MATCH (g:Genre)
RETURN g.name AS name
ORDER BY name ASC`

const searchMoviesCypher = `
MATCH (m:Movie)
WHERE toLower(m.title) CONTAINS toLower($query)
OPTIONAL MATCH (m)-[:HAS_GENRE]->(g:Genre)
WITH m, collect(DISTINCT g.name) AS genres
RETURN m.id AS id, m.title AS title, m.year AS year,
       m.runtimeMinutes AS runtime, m.averageRating AS rating,
       m.numVotes AS votes, genres
ORDER BY title ASC, id ASC
LIMIT $limit`

// Catalog answers genre and title lookups.
type Catalog struct {
	store graph.Store
}

// New creates a catalog over store.
func New(store graph.Store) *Catalog {
	return &Catalog{store: store}
}

// ListGenres returns every genre name in the graph, sorted.
func (c *Catalog) ListGenres(ctx context.Context) ([]string, error) {
	records, err := c.store.ExecuteRead(ctx, graph.Query{Name: "list_genres", Cypher: listGenresCypher})
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	genres := make([]string, 0, len(records))
	for _, r := range records {
		name, err := graph.DecodeOptionalString(r, "name")
		if err != nil {
			return nil, err
		}
		if name != "" {
			genres = append(genres, name)
		}
	}
	return genres, nil
}

// SearchMovies returns movies whose title contains query, ignoring case,
// sorted by title. A blank query matches nothing.
func (c *Catalog) SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Movie{}, nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	records, err := c.store.ExecuteRead(ctx, graph.Query{
		Name:   "search_movies",
		Cypher: searchMoviesCypher,
		Params: map[string]any{"query": query, "limit": int64(limit)},
	})
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}

	movies := make([]models.Movie, 0, len(records))
	for _, r := range records {
		m, err := graph.DecodeMovie(r)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}
	return movies, nil
}
