// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package recommend

import (
	"context"
	"slices"
	"time"

	"github.com/tomtom215/moviequeue/internal/models"
)

// RatedMovie is one movie a user rated, with everyone who worked on it.
type RatedMovie struct {
	MovieID       string
	Rating        float64
	Collaborators []models.Collaborator
}

// Candidate is an unrated movie considered for recommendation.
type Candidate struct {
	Movie         models.Movie
	Collaborators []models.Collaborator
}

// Influence maps a (person, role) pair to its accumulated weight.
type Influence map[models.CollaboratorKey]float64

// Scores is the per-term breakdown of a total score.
type Scores struct {
	Collaboration float64 `json:"collaboration"`
	Popularity    float64 `json:"popularity"`
	Quality       float64 `json:"quality"`
	Genre         float64 `json:"genre"`
}

// Total returns the sum of all terms.
func (s Scores) Total() float64 {
	return s.Collaboration + s.Popularity + s.Quality + s.Genre
}

// RoleGroup lists the shared collaborators of one role.
type RoleGroup struct {
	Role  models.RelationshipType `json:"role"`
	Label string                  `json:"label"`
	Names []string                `json:"names"`
}

// ScoredMovie is one ranked recommendation.
type ScoredMovie struct {
	MovieID        string   `json:"movie_id"`
	Title          string   `json:"title"`
	Year           int      `json:"year,omitempty"`
	RuntimeMinutes *int     `json:"runtime_minutes,omitempty"`
	AverageRating  *float64 `json:"average_rating,omitempty"`
	NumVotes       *int64   `json:"num_votes,omitempty"`
	Genres         []string `json:"genres"`

	Score  float64 `json:"score"`
	Scores Scores  `json:"scores"`

	SharedGenres        []string    `json:"shared_genres"`
	SharedCollaborators []RoleGroup `json:"shared_collaborators"`
	Explanation         []string    `json:"explanation"`
}

// Request asks for recommendations within a set of genres.
type Request struct {
	Genres []string `json:"genres"`

	// Limit is the number of results; 0 means the configured default.
	Limit int `json:"limit,omitempty"`
}

// Response holds ranked recommendations. TooBroad is set, with no items,
// when the graph could not evaluate the selection within its memory limits.
type Response struct {
	Items    []ScoredMovie    `json:"items"`
	TooBroad bool             `json:"too_broad"`
	Metadata ResponseMetadata `json:"metadata"`
}

// clone returns a deep copy so cached responses never share memory with
// the ones handed to callers.
func (r *Response) clone() *Response {
	cp := *r
	cp.Items = make([]ScoredMovie, len(r.Items))
	for i, item := range r.Items {
		cp.Items[i] = item.clone()
	}
	cp.Metadata.Genres = slices.Clone(r.Metadata.Genres)
	return &cp
}

func (m ScoredMovie) clone() ScoredMovie {
	m.Genres = slices.Clone(m.Genres)
	m.SharedGenres = slices.Clone(m.SharedGenres)
	m.Explanation = slices.Clone(m.Explanation)
	if m.SharedCollaborators != nil {
		groups := make([]RoleGroup, len(m.SharedCollaborators))
		for i, g := range m.SharedCollaborators {
			g.Names = slices.Clone(g.Names)
			groups[i] = g
		}
		m.SharedCollaborators = groups
	}
	m.RuntimeMinutes = clonePtr(m.RuntimeMinutes)
	m.AverageRating = clonePtr(m.AverageRating)
	m.NumVotes = clonePtr(m.NumVotes)
	return m
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// ResponseMetadata describes how a response was produced.
type ResponseMetadata struct {
	RequestID   string    `json:"request_id"`
	Username    string    `json:"username"`
	Genres      []string  `json:"genres"`
	RatedMovies int       `json:"rated_movies"`
	Candidates  int       `json:"candidates"`
	Influencers int       `json:"influencers"`
	LatencyMS   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	GeneratedAt time.Time `json:"generated_at"`
}

// DataProvider reads what the engine needs from the graph.
type DataProvider interface {
	// RatedParticipations returns every movie username rated with its
	// collaborators.
	RatedParticipations(ctx context.Context, username string) ([]RatedMovie, error)

	// Candidates returns up to limit movies with at least one of genres that
	// username has not rated, most voted first.
	Candidates(ctx context.Context, username string, genres []string, limit int) ([]Candidate, error)
}

// Metrics is a snapshot of engine counters.
type Metrics struct {
	RequestCount int64 `json:"request_count"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	TooBroad     int64 `json:"too_broad"`
	ErrorCount   int64 `json:"error_count"`
}
