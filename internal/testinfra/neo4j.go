// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tomtom215/moviequeue/internal/config"
)

const (
	// DefaultNeo4jImage is the community edition used by integration tests.
	DefaultNeo4jImage = "neo4j:5-community"

	// DefaultNeo4jPassword must be at least 8 characters for Neo4j 5.
	DefaultNeo4jPassword = "moviequeue-test"

	boltPort = "7687/tcp"
)

// Neo4jContainer is a running Neo4j server.
type Neo4jContainer struct {
	testcontainers.Container
	BoltURI  string
	Username string
	Password string
}

// Neo4jOption configures the container.
type Neo4jOption func(*neo4jConfig)

type neo4jConfig struct {
	image        string
	password     string
	startTimeout time.Duration
}

// WithNeo4jImage overrides DefaultNeo4jImage.
func WithNeo4jImage(image string) Neo4jOption {
	return func(c *neo4jConfig) { c.image = image }
}

// WithStartTimeout bounds the wait for the Bolt listener.
func WithStartTimeout(timeout time.Duration) Neo4jOption {
	return func(c *neo4jConfig) { c.startTimeout = timeout }
}

// NewNeo4jContainer starts Neo4j and waits until Bolt accepts connections.
func NewNeo4jContainer(ctx context.Context, opts ...Neo4jOption) (*Neo4jContainer, error) {
	cfg := &neo4jConfig{
		image:        DefaultNeo4jImage,
		password:     DefaultNeo4jPassword,
		startTimeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{boltPort},
		Env: map[string]string{
			"NEO4J_AUTH": "neo4j/" + cfg.password,
			// Small heap keeps CI runners happy.
			"NEO4J_server_memory_heap_max__size": "512m",
		},
		WaitingFor: wait.ForAll(
			wait.ForLog("Started."),
			wait.ForListeningPort(boltPort),
		).WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, boltPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get bolt port: %w", err)
	}

	return &Neo4jContainer{
		Container: container,
		BoltURI:   fmt.Sprintf("neo4j://%s:%s", host, port.Port()),
		Username:  "neo4j",
		Password:  cfg.password,
	}, nil
}

// Config returns a Neo4j configuration pointing at the container.
func (c *Neo4jContainer) Config() config.Neo4jConfig {
	return config.Neo4jConfig{
		URI:            c.BoltURI,
		Username:       c.Username,
		Password:       c.Password,
		MaxPoolSize:    10,
		ConnectTimeout: 30 * time.Second,
		QueryTimeout:   30 * time.Second,
	}
}
