// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"

	"github.com/tomtom215/moviequeue/internal/config"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
)

// Neo4jStore implements Store on top of the official Neo4j driver.
// It is safe for concurrent use; every call opens its own session.
type Neo4jStore struct {
	driver       neo4j.DriverWithContext
	database     string
	queryTimeout time.Duration
	log          zerolog.Logger
}

// NewNeo4jStore creates the driver and verifies connectivity.
func NewNeo4jStore(ctx context.Context, cfg config.Neo4jConfig) (*Neo4jStore, error) {
	auth := neo4j.NoAuth()
	if cfg.Username != "" {
		auth = neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.MaxConnectionPoolSize = cfg.MaxPoolSize
		c.SocketConnectTimeout = cfg.ConnectTimeout
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: init driver: %w", err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("neo4j: verify connectivity to %s: %w", cfg.URI, err)
	}

	s := &Neo4jStore{
		driver:       driver,
		database:     cfg.Database,
		queryTimeout: cfg.QueryTimeout,
		log:          logging.WithComponent(logging.ComponentGraph),
	}
	s.log.Info().Str("uri", cfg.URI).Str("database", cfg.Database).Msg("Connected to Neo4j")
	return s, nil
}

// ExecuteRead runs q in a read transaction.
func (s *Neo4jStore) ExecuteRead(ctx context.Context, q Query) ([]Record, error) {
	return s.managed(ctx, ModeRead, q)
}

// ExecuteWrite runs q in a write transaction.
func (s *Neo4jStore) ExecuteWrite(ctx context.Context, q Query) ([]Record, error) {
	return s.managed(ctx, ModeWrite, q)
}

// Execute runs q as an auto-commit statement.
func (s *Neo4jStore) Execute(ctx context.Context, q Query) ([]Record, error) {
	start := time.Now()
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	records, err := func() ([]Record, error) {
		result, err := session.Run(ctx, q.Cypher, q.Params, neo4j.WithTxTimeout(s.queryTimeout))
		if err != nil {
			return nil, classify(err)
		}
		collected, err := result.Collect(ctx)
		if err != nil {
			return nil, classify(err)
		}
		return toRecords(collected), nil
	}()

	return s.finish(ModeAuto, q, start, records, err)
}

func (s *Neo4jStore) managed(ctx context.Context, mode string, q Query) ([]Record, error) {
	start := time.Now()
	access := neo4j.AccessModeRead
	if mode == ModeWrite {
		access = neo4j.AccessModeWrite
	}
	session := s.session(ctx, access)
	defer session.Close(ctx)

	// classify runs inside the unit of work: a memory-limit error returned
	// without the driver error type is not retried.
	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, q.Cypher, q.Params)
		if err != nil {
			return nil, classify(err)
		}
		collected, err := result.Collect(ctx)
		if err != nil {
			return nil, classify(err)
		}
		return toRecords(collected), nil
	}

	var out any
	var err error
	if mode == ModeWrite {
		out, err = session.ExecuteWrite(ctx, work, neo4j.WithTxTimeout(s.queryTimeout))
	} else {
		out, err = session.ExecuteRead(ctx, work, neo4j.WithTxTimeout(s.queryTimeout))
	}

	records, _ := out.([]Record)
	return s.finish(mode, q, start, records, classify(err))
}

func (s *Neo4jStore) finish(mode string, q Query, start time.Time, records []Record, err error) ([]Record, error) {
	elapsed := time.Since(start)
	metrics.RecordGraphQuery(mode, q.Name, elapsed, errorType(err))
	if err != nil {
		s.log.Debug().Err(err).Str("query", q.Name).Str("mode", mode).Dur("elapsed", elapsed).Msg("Query failed")
		return nil, fmt.Errorf("%s query %s: %w", mode, q.Name, err)
	}
	s.log.Trace().Str("query", q.Name).Str("mode", mode).Int("records", len(records)).Dur("elapsed", elapsed).Msg("Query complete")
	return records, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   mode,
		DatabaseName: s.database,
	})
}

// Ping verifies the server is reachable.
func (s *Neo4jStore) Ping(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("neo4j: ping: %w", err)
	}
	return nil
}

// Close releases the driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func toRecords(in []*neo4j.Record) []Record {
	out := make([]Record, len(in))
	for i, rec := range in {
		r := make(Record, len(rec.Keys))
		for j, key := range rec.Keys {
			r[key] = rec.Values[j]
		}
		out[i] = r
	}
	return out
}
