// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/validation"
)

// RecommendRequest is the validated form of a recommendation query.
type RecommendRequest struct {
	Username string   `json:"username" validate:"required,username"`
	Genres   []string `json:"genres" validate:"max=30,dive,min=1,max=64"`
	Limit    int      `json:"limit" validate:"gte=0,lte=25"`
}

// RatingRequest is the body of PUT /users/{username}/ratings/{movieID}.
// The upper bound of rating is checked by the ratings service, which knows
// the configured maximum.
type RatingRequest struct {
	Username  string  `json:"-" validate:"required,username"`
	MovieID   string  `json:"-" validate:"required,title_id"`
	Rating    float64 `json:"rating" validate:"gt=0,half_step"`
	Discovery string  `json:"discovery" validate:"required,discovery"`
}

// SearchRequest is the validated form of a movie search.
type SearchRequest struct {
	Query string `json:"q" validate:"required,min=1,max=200"`
	Limit int    `json:"limit" validate:"gte=0,lte=100"`
}

// UserMovieRequest validates the path of a single rating.
type UserMovieRequest struct {
	Username string `json:"username" validate:"required,username"`
	MovieID  string `json:"movie_id" validate:"required,title_id"`
}

// UserRequest validates a username path parameter on its own.
type UserRequest struct {
	Username string `json:"username" validate:"required,username"`
}

// validateRequest returns nil when v passes its struct tags.
func validateRequest(v interface{}) *models.APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// splitList splits a comma-separated query value, dropping blanks. Repeated
// parameters (?genre=a&genre=b) are accepted as well.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// getIntParam extracts an integer query parameter. ok is false when the
// value is present but not an integer.
func getIntParam(r *http.Request, key string, defaultValue int) (int, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, true
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue, false
	}
	return n, true
}
