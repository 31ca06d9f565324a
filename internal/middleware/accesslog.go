// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package middleware

import (
	"net/http"
	"time"

	"github.com/tomtom215/moviequeue/internal/logging"
)

// DefaultSlowRequestThreshold is used when AccessLog gets a zero threshold.
const DefaultSlowRequestThreshold = time.Second

// AccessLog logs one line per request at debug level, or at warn level when
// the request took longer than slow. It must run inside RequestID so the
// line carries the request id.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)
			duration := time.Since(start)

			logger := logging.Ctx(r.Context())
			event := logger.Debug()
			if duration > slow {
				event = logger.Warn()
			}
			event.
				Str("component", logging.ComponentAPI).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapper.statusCode).
				Int64("duration_ms", duration.Milliseconds()).
				Msg("request")
		})
	}
}
