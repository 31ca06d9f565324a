// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package middleware provides the HTTP middleware mounted by internal/api.

Key Components:

  - RequestID: reuses or generates an X-Request-ID and stores it in the
    request context, where logging.Ctx and session.New pick it up
  - PrometheusMetrics: request count, latency and in-flight gauge labelled by
    the chi route pattern
  - AccessLog: one structured line per request, promoted to warn for slow
    requests

All three are plain func(http.Handler) http.Handler values and can be passed
to chi's Use directly:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
