// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviequeue/internal/api"
	"github.com/tomtom215/moviequeue/internal/catalog"
	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/metrics"
	"github.com/tomtom215/moviequeue/internal/ratings"
	"github.com/tomtom215/moviequeue/internal/recommend"
	"github.com/tomtom215/moviequeue/internal/supervisor"
	"github.com/tomtom215/moviequeue/internal/supervisor/services"
)

const healthProbeInterval = 30 * time.Second

// domain bundles the services built on one graph store.
type domain struct {
	engine  *recommend.Engine
	ratings *ratings.Service
	catalog *catalog.Catalog
}

func (a *app) newDomain(store graph.Store) (*domain, error) {
	engine, err := recommend.NewEngine(
		recommend.FromAppConfig(a.cfg.Recommend),
		a.roles,
		recommend.NewGraphProvider(store, a.roles),
	)
	if err != nil {
		return nil, fmt.Errorf("recommendation engine: %w", err)
	}
	return &domain{
		engine:  engine,
		ratings: ratings.NewService(store, a.cfg.Recommend.MaxRating, engine),
		catalog: catalog.New(store),
	}, nil
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Start the HTTP API and a Neo4j health probe under a suture supervisor tree.
SIGINT or SIGTERM drains in-flight requests and exits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logging.Info().Str("version", version).Msg("Starting MovieQueue with supervisor tree")
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	store, err := a.openStore(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("connect to graph store: %w", err)
	}
	defer closeStore(store)

	if err := graph.EnsureSchema(ctx, store); err != nil {
		logging.Warn().Err(err).Msg("Schema bootstrap incomplete; continuing")
	}

	d, err := a.newDomain(store)
	if err != nil {
		return err
	}

	handler := api.NewHandler(d.engine, d.ratings, d.catalog, store, version)
	server := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, api.MiddlewareConfigFromServer(a.cfg.Server)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.cfg.Server.Timeout,
		WriteTimeout:      a.cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(logging.ComponentSupervisor), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewHealthProbeService(store, healthProbeInterval))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// The tree runs until ctx is canceled by a signal.
	serveErr := <-tree.ServeBackground(ctx)
	if errors.Is(serveErr, context.Canceled) {
		serveErr = nil
	}
	if serveErr != nil {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
		}
	}

	m := d.engine.Metrics()
	logging.Info().
		Int64("recommendations", m.RequestCount).
		Int64("cache_hits", m.CacheHits).
		Int64("too_broad", m.TooBroad).
		Msg("MovieQueue stopped")
	return serveErr
}
