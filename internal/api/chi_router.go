// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/moviequeue/internal/middleware"
)

// NewRouter mounts every route on a chi router.
func NewRouter(h *Handler, cfg *ChiMiddlewareConfig) http.Handler {
	mw := NewChiMiddleware(cfg)
	r := chi.NewRouter()

	// Global middleware, in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if mw.config.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(mw.config.RequestTimeout))
		}

		r.Get("/health", h.Health)

		r.Group(func(r chi.Router) {
			r.Use(mw.RateLimit())

			r.Get("/genres", h.Genres)
			r.Get("/movies", h.Movies)

			r.Route("/users/{username}", func(r chi.Router) {
				r.Get("/recommendations", h.Recommendations)
				r.Get("/ratings/{movieID}", h.GetRating)
				r.Put("/ratings/{movieID}", h.PutRating)
				r.Get("/analytics", h.Analytics)
			})
		})
	})

	return r
}
