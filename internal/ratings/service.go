// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ratings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/session"
)

// MinRating is the lowest accepted rating. Ratings move in steps of MinRating.
const MinRating = 0.5

var (
	// ErrMovieNotFound is returned when the rated movie is not in the graph.
	ErrMovieNotFound = errors.New("ratings: movie not found")

	// ErrInvalidRating is returned for a rating outside [MinRating, max] or
	// not on a half step.
	ErrInvalidRating = errors.New("ratings: invalid rating")

	// ErrInvalidDiscovery is returned for an unknown discovery method.
	ErrInvalidDiscovery = errors.New("ratings: invalid discovery method")
)

// Invalidator drops cached data derived from a user's ratings.
type Invalidator interface {
	InvalidateUser(username string) int
}

// RatingInput is one rating submission.
type RatingInput struct {
	MovieID   string
	Rating    float64
	Discovery models.DiscoveryMethod
}

// Service stores ratings and summarizes them.
type Service struct {
	store       graph.Store
	maxRating   float64
	invalidator Invalidator
	now         func() time.Time
	logger      zerolog.Logger
}

// NewService creates a rating service. invalidator may be nil.
func NewService(store graph.Store, maxRating float64, invalidator Invalidator) *Service {
	if maxRating <= 0 {
		maxRating = 10
	}
	return &Service{
		store:       store,
		maxRating:   maxRating,
		invalidator: invalidator,
		now:         time.Now,
		logger:      logging.WithComponent(logging.ComponentRatings),
	}
}

// MaxRating returns the highest accepted rating.
func (s *Service) MaxRating() float64 {
	return s.maxRating
}

// Validate checks a submission without touching the graph.
func (s *Service) Validate(in RatingInput) error {
	if strings.TrimSpace(in.MovieID) == "" {
		return fmt.Errorf("%w: movie id is required", ErrMovieNotFound)
	}
	if math.IsNaN(in.Rating) || in.Rating < MinRating || in.Rating > s.maxRating {
		return fmt.Errorf("%w: %v is outside [%v, %v]", ErrInvalidRating, in.Rating, MinRating, s.maxRating)
	}
	if steps := in.Rating / MinRating; math.Abs(steps-math.Round(steps)) > 1e-9 {
		return fmt.Errorf("%w: %v is not a multiple of %v", ErrInvalidRating, in.Rating, MinRating)
	}
	if !in.Discovery.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDiscovery, in.Discovery)
	}
	return nil
}

const submitCypher = `
MATCH (m:Movie {id: $movieId})
MERGE (u:User {username: $username})
MERGE (u)-[r:RATED]->(m)
SET r.rating = $rating, r.discovery = $discovery, r.ratedAt = $ratedAt
RETURN m.id AS movieId, r.rating AS rating, r.discovery AS discovery, r.ratedAt AS ratedAt`

// Submit records or replaces the session user's rating of a movie. The last
// write wins.
func (s *Service) Submit(ctx context.Context, sess session.Session, in RatingInput) (*models.Rating, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	in.MovieID = strings.TrimSpace(in.MovieID)
	if err := s.Validate(in); err != nil {
		return nil, err
	}

	records, err := s.store.ExecuteWrite(ctx, graph.Query{
		Name:   "submit_rating",
		Cypher: submitCypher,
		Params: map[string]any{
			"username":  sess.Username,
			"movieId":   in.MovieID,
			"rating":    in.Rating,
			"discovery": string(in.Discovery),
			"ratedAt":   s.now().UTC(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("submit rating: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMovieNotFound, in.MovieID)
	}

	rating, err := decodeRating(records[0], sess.Username)
	if err != nil {
		return nil, err
	}

	metrics.RatingsSubmitted.WithLabelValues(string(in.Discovery)).Inc()
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(sess.Username)
	}

	s.logger.Info().
		Str("request_id", sess.RequestID).
		Str("username", sess.Username).
		Str("movie_id", in.MovieID).
		Float64("rating", in.Rating).
		Msg("rating recorded")
	return rating, nil
}

const existingCypher = `
MATCH (:User {username: $username})-[r:RATED]->(m:Movie {id: $movieId})
RETURN m.id AS movieId, r.rating AS rating, r.discovery AS discovery, r.ratedAt AS ratedAt`

// Existing returns the session user's rating of movieID, or nil when the
// user has not rated it.
func (s *Service) Existing(ctx context.Context, sess session.Session, movieID string) (*models.Rating, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	records, err := s.store.ExecuteRead(ctx, graph.Query{
		Name:   "existing_rating",
		Cypher: existingCypher,
		Params: map[string]any{"username": sess.Username, "movieId": strings.TrimSpace(movieID)},
	})
	if err != nil {
		return nil, fmt.Errorf("read rating: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return decodeRating(records[0], sess.Username)
}

func decodeRating(r graph.Record, username string) (*models.Rating, error) {
	rating := &models.Rating{Username: username}
	var err error
	if rating.MovieID, err = graph.DecodeString(r, "movieId"); err != nil {
		return nil, err
	}
	if rating.Score, err = graph.DecodeFloat(r, "rating"); err != nil {
		return nil, err
	}
	discovery, err := graph.DecodeOptionalString(r, "discovery")
	if err != nil {
		return nil, err
	}
	rating.Discovery = models.DiscoveryMethod(discovery)
	if r["ratedAt"] != nil {
		if rating.RatedAt, err = graph.DecodeTime(r, "ratedAt"); err != nil {
			return nil, err
		}
	}
	return rating, nil
}
