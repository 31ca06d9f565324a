// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
)

// Pinger is implemented by graph.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultMaxConsecutiveFailures is the failure streak after which the probe
// returns and lets suture back it off.
const DefaultMaxConsecutiveFailures = 5

// HealthProbeService pings the graph store every interval and exports the
// result as metrics.GraphUp.
type HealthProbeService struct {
	store       Pinger
	interval    time.Duration
	timeout     time.Duration
	maxFailures int
	logger      zerolog.Logger
	name        string
}

// NewHealthProbeService creates a probe. interval defaults to 30s.
func NewHealthProbeService(store Pinger, interval time.Duration) *HealthProbeService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &HealthProbeService{
		store:       store,
		interval:    interval,
		timeout:     timeout,
		maxFailures: DefaultMaxConsecutiveFailures,
		logger:      logging.WithComponent(logging.ComponentHealth),
		name:        "graph-health",
	}
}

// Serve implements suture.Service.
func (s *HealthProbeService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	healthy := true
	failures := 0
	for {
		err := s.probe(ctx)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			failures++
			metrics.GraphUp.Set(0)
			if healthy {
				s.logger.Warn().Err(err).Msg("graph store unreachable")
			}
			healthy = false
			if failures >= s.maxFailures {
				return fmt.Errorf("graph store unreachable after %d probes: %w", failures, err)
			}
		default:
			metrics.GraphUp.Set(1)
			if !healthy {
				s.logger.Info().Int("failed_probes", failures).Msg("graph store reachable again")
			}
			healthy = true
			failures = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *HealthProbeService) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.store.Ping(ctx)
}

// String implements fmt.Stringer.
func (s *HealthProbeService) String() string {
	return s.name
}
