// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package api

import (
	"context"

	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/ratings"
	"github.com/tomtom215/moviequeue/internal/recommend"
	"github.com/tomtom215/moviequeue/internal/session"
)

// Recommender produces recommendations. Implemented by *recommend.Engine.
type Recommender interface {
	Recommend(ctx context.Context, sess session.Session, req recommend.Request) (*recommend.Response, error)
}

// RatingService stores and summarizes ratings. Implemented by *ratings.Service.
type RatingService interface {
	Submit(ctx context.Context, sess session.Session, in ratings.RatingInput) (*models.Rating, error)
	Existing(ctx context.Context, sess session.Session, movieID string) (*models.Rating, error)
	Analytics(ctx context.Context, sess session.Session) (*models.UserAnalytics, error)
}

// Catalog answers browse queries. Implemented by *catalog.Catalog.
type Catalog interface {
	ListGenres(ctx context.Context) ([]string, error)
	SearchMovies(ctx context.Context, query string, limit int) ([]models.Movie, error)
}

// Pinger reports graph store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API.
type Handler struct {
	recommender Recommender
	ratings     RatingService
	catalog     Catalog
	store       Pinger
	version     string
}

// NewHandler creates a handler. All dependencies are required.
func NewHandler(recommender Recommender, ratingSvc RatingService, cat Catalog, store Pinger, version string) *Handler {
	return &Handler{
		recommender: recommender,
		ratings:     ratingSvc,
		catalog:     cat,
		store:       store,
		version:     version,
	}
}
