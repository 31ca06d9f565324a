// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

/*
Package api serves the MovieQueue HTTP API on a chi router.

Routes:

	GET  /api/v1/health
	GET  /api/v1/genres
	GET  /api/v1/movies?q=&limit=
	GET  /api/v1/users/{username}/recommendations?genres=Drama,Crime&limit=
	GET  /api/v1/users/{username}/ratings/{movieID}
	PUT  /api/v1/users/{username}/ratings/{movieID}
	GET  /api/v1/users/{username}/analytics
	GET  /metrics

Every JSON response uses the models.APIResponse envelope with status
"success" or "error". Errors carry a machine-readable code:

  - 400 BAD_REQUEST, VALIDATION_ERROR
  - 404 NOT_FOUND
  - 422 SELECTION_TOO_BROAD (data still holds the empty response)
  - 429 TOO_MANY_REQUESTS
  - 500 INTERNAL_ERROR
  - 503 SERVICE_UNAVAILABLE

Handlers depend on small interfaces (Recommender, RatingService, Catalog,
Pinger) so they can be tested with fakes and net/http/httptest.
*/
package api
