// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package graph

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/moviequeue/internal/config"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
)

// BreakerStore wraps a Store with the circuit breaker pattern so that an
// unreachable database fails fast instead of piling up timed-out requests.
//
// Memory-limit errors and caller cancellations do not count as failures:
// they describe the request, not the health of the store.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[[]Record]
	name string
}

// NewBreakerStore wraps next. Settings mirror cfg; with the defaults the
// circuit opens after a 60% failure rate over at least 10 requests and
// probes again after 2 minutes.
func NewBreakerStore(next Store, cfg config.BreakerConfig) *BreakerStore {
	name := "neo4j"

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Record](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= cfg.FailureRatio
			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},

		IsSuccessful: func(err error) bool {
			return err == nil ||
				IsResourceExhausted(err) ||
				errors.Is(err, ErrDecode) ||
				errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{next: next, cb: cb, name: name}
}

func (b *BreakerStore) execute(fn func() ([]Record, error)) ([]Record, error) {
	records, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return records, nil
}

// Execute runs an auto-commit statement through the breaker.
func (b *BreakerStore) Execute(ctx context.Context, q Query) ([]Record, error) {
	return b.execute(func() ([]Record, error) { return b.next.Execute(ctx, q) })
}

// ExecuteRead runs a read transaction through the breaker.
func (b *BreakerStore) ExecuteRead(ctx context.Context, q Query) ([]Record, error) {
	return b.execute(func() ([]Record, error) { return b.next.ExecuteRead(ctx, q) })
}

// ExecuteWrite runs a write transaction through the breaker.
func (b *BreakerStore) ExecuteWrite(ctx context.Context, q Query) ([]Record, error) {
	return b.execute(func() ([]Record, error) { return b.next.ExecuteWrite(ctx, q) })
}

// Ping goes through the breaker so health checks report an open circuit.
func (b *BreakerStore) Ping(ctx context.Context) error {
	_, err := b.execute(func() ([]Record, error) { return nil, b.next.Ping(ctx) })
	return err
}

// Close closes the wrapped store.
func (b *BreakerStore) Close(ctx context.Context) error {
	return b.next.Close(ctx)
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *BreakerStore) State() string {
	return stateToString(b.cb.State())
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
