// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/ratings"
	"github.com/tomtom215/moviequeue/internal/recommend"
	"github.com/tomtom215/moviequeue/internal/session"
)

// maxRatingBodyBytes bounds the PUT rating body.
const maxRatingBodyBytes = 4 << 10

// Recommendations handles GET /api/v1/users/{username}/recommendations.
//
// Query parameters: genres (comma separated or repeated), limit.
// An empty genre list returns an empty result. A selection the graph cannot
// evaluate within its memory limits returns 422 SELECTION_TOO_BROAD.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := getIntParam(r, "limit", 0)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be an integer", nil)
		return
	}
	query := r.URL.Query()
	req := RecommendRequest{
		Username: chi.URLParam(r, "username"),
		Genres:   splitList(append(query["genres"], query["genre"]...)),
		Limit:    limit,
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	sess, err := session.New(r.Context(), req.Username)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "username is required", err)
		return
	}

	resp, err := h.recommender.Recommend(r.Context(), sess, recommend.Request{Genres: req.Genres, Limit: req.Limit})
	if errors.Is(err, recommend.ErrSelectionTooBroad) {
		respondJSON(w, http.StatusUnprocessableEntity, &models.APIResponse{
			Status: "error",
			Data:   resp,
			Metadata: models.Metadata{
				Timestamp: time.Now().UTC(),
				RequestID: sess.RequestID,
			},
			Error: &models.APIError{
				Code:    ErrCodeSelectionTooBroad,
				Message: "Genre selection is too broad. Choose fewer or narrower genres.",
			},
		})
		logging.Ctx(r.Context()).Warn().Str("component", logging.ComponentAPI).Strs("genres", req.Genres).Msg("selection too broad")
		return
	}
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to generate recommendations")
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now().UTC(),
			RequestID:   sess.RequestID,
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      resp.Metadata.CacheHit,
		},
	})
}

// GetRating handles GET /api/v1/users/{username}/ratings/{movieID}. It
// returns 404 when the user has not rated the movie.
func (h *Handler) GetRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sess, movieID, ok := h.userMovie(w, r)
	if !ok {
		return
	}

	rating, err := h.ratings.Existing(r.Context(), sess, movieID)
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to read rating")
		return
	}
	if rating == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "No rating for this movie", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, rating, start)
}

// PutRating handles PUT /api/v1/users/{username}/ratings/{movieID} with a
// body of {"rating": 8.5, "discovery": "Social Media"}.
func (h *Handler) PutRating(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RatingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRatingBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON body", err)
		return
	}
	req.Username = chi.URLParam(r, "username")
	req.MovieID = chi.URLParam(r, "movieID")
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	sess, err := session.New(r.Context(), req.Username)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "username is required", err)
		return
	}

	rating, err := h.ratings.Submit(r.Context(), sess, ratings.RatingInput{
		MovieID:   req.MovieID,
		Rating:    req.Rating,
		Discovery: models.DiscoveryMethod(req.Discovery),
	})
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to save rating")
		return
	}
	respondSuccess(w, r, http.StatusOK, rating, start)
}

// Analytics handles GET /api/v1/users/{username}/analytics.
func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := UserRequest{Username: chi.URLParam(r, "username")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}
	sess, err := session.New(r.Context(), req.Username)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "username is required", err)
		return
	}

	analytics, err := h.ratings.Analytics(r.Context(), sess)
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to compute analytics")
		return
	}
	respondSuccess(w, r, http.StatusOK, analytics, start)
}

// userMovie validates the {username} and {movieID} path parameters.
func (h *Handler) userMovie(w http.ResponseWriter, r *http.Request) (session.Session, string, bool) {
	req := UserMovieRequest{
		Username: chi.URLParam(r, "username"),
		MovieID:  chi.URLParam(r, "movieID"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return session.Session{}, "", false
	}
	sess, err := session.New(r.Context(), req.Username)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "username is required", err)
		return session.Session{}, "", false
	}
	return sess, req.MovieID, true
}

// respondDomainError maps service errors to HTTP statuses.
func (h *Handler) respondDomainError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, ratings.ErrMovieNotFound):
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Movie not found", err)
	case errors.Is(err, ratings.ErrInvalidRating), errors.Is(err, ratings.ErrInvalidDiscovery):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, session.ErrNoUser):
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "username is required", nil)
	case errors.Is(err, graph.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Graph store unavailable", err)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, message, err)
	}
}
