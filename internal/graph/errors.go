// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	gobreaker "github.com/sony/gobreaker/v2"
)

var (
	// ErrResourceExhausted is returned when the server aborts a query because
	// it ran out of memory. Retrying the same query will fail the same way.
	ErrResourceExhausted = errors.New("graph: query exceeded server memory limits")

	// ErrUnavailable is returned when the circuit breaker rejects a call.
	ErrUnavailable = errors.New("graph: store unavailable")

	// ErrDecode is returned when a record does not have the expected shape.
	ErrDecode = errors.New("graph: unexpected record shape")
)

// resourceExhaustedCodes are Neo4j status codes raised by the memory guards.
var resourceExhaustedCodes = map[string]bool{
	"Neo.TransientError.General.MemoryPoolOutOfMemoryError":         true,
	"Neo.TransientError.General.TransactionMemoryLimit":             true,
	"Neo.TransientError.General.OutOfMemoryError":                   true,
	"Neo.ClientError.Transaction.TransactionMemoryLimitExceeded":    true,
	"Neo.TransientError.Transaction.TransactionMemoryLimitExceeded": true,
}

// classify wraps server memory errors with ErrResourceExhausted and leaves
// everything else untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) && resourceExhaustedCodes[neoErr.Code] {
		return fmt.Errorf("%w: %s", ErrResourceExhausted, neoErr.Msg)
	}
	return err
}

// IsResourceExhausted reports whether err is, or wraps, a memory-limit failure.
func IsResourceExhausted(err error) bool {
	return errors.Is(err, ErrResourceExhausted)
}

// errorType is the metrics label for a failed query.
func errorType(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrResourceExhausted):
		return "resource_exhausted"
	case errors.Is(err, ErrUnavailable),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "other"
	}
}
