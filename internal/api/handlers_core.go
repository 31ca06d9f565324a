// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/moviequeue/internal/catalog"
	"github.com/tomtom215/moviequeue/internal/models"
)

const healthTimeout = 3 * time.Second

// Health handles GET /api/v1/health. It returns 503 when the graph store
// cannot be reached.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := models.HealthStatus{
		Status:    "healthy",
		Graph:     "connected",
		Version:   h.version,
		CheckedAt: time.Now().UTC(),
	}
	if err := h.store.Ping(ctx); err != nil {
		status.Status = "degraded"
		status.Graph = "unreachable"
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Status: "error",
			Data:   status,
			Metadata: models.Metadata{
				Timestamp: time.Now().UTC(),
			},
			Error: &models.APIError{Code: ErrCodeServiceUnavailable, Message: "Graph store unreachable"},
		})
		return
	}
	respondSuccess(w, r, http.StatusOK, status, start)
}

// Genres handles GET /api/v1/genres.
func (h *Handler) Genres(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	genres, err := h.catalog.ListGenres(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to list genres", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, genres, start)
}

// Movies handles GET /api/v1/movies?q=&limit=.
func (h *Handler) Movies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit, ok := getIntParam(r, "limit", catalog.DefaultSearchLimit)
	if !ok {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "limit must be an integer", nil)
		return
	}
	req := SearchRequest{Query: r.URL.Query().Get("q"), Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondAPIError(w, r, http.StatusBadRequest, apiErr)
		return
	}

	movies, err := h.catalog.SearchMovies(r.Context(), req.Query, req.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "Failed to search movies", err)
		return
	}
	respondSuccess(w, r, http.StatusOK, movies, start)
}
