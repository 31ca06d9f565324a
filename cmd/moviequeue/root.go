// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/moviequeue/internal/config"
	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/logging"
	"github.com/tomtom215/moviequeue/internal/models"
)

// app carries the state shared by every subcommand once the persistent
// pre-run has loaded the configuration.
type app struct {
	configPath string
	logLevel   string

	cfg   *config.Config
	roles *models.RoleTable

	// openStore is replaced in tests.
	openStore func(ctx context.Context, cfg *config.Config) (graph.Store, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdFor(&app{openStore: openGraphStore})
}

func newRootCmdFor(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "moviequeue",
		Short: "MovieQueue - graph-backed movie recommendations",
		Long: `MovieQueue loads IMDb TSV dumps into Neo4j and recommends movies by the
people a user's rated movies share with candidate movies.

Examples:
  moviequeue run                                   # ingest + load
  moviequeue serve                                 # start the HTTP API
  moviequeue recommend --user alice --genre Crime  # one-shot recommendation`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return a.init()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.yaml (default: CONFIG_PATH or ./config.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newIngestCmd(a),
		newLoadCmd(a),
		newRunCmd(a),
		newServeCmd(a),
		newRecommendCmd(a),
		newRateCmd(a),
		newVersionCmd(),
	)
	return root
}

// init loads configuration, initializes logging and resolves the role
// table.
func (a *app) init() error {
	cfg, err := config.LoadWithKoanf(a.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logCfg.Version = version
	logging.Init(logCfg)

	roles, err := cfg.RoleTable()
	if err != nil {
		return fmt.Errorf("role table: %w", err)
	}
	a.cfg = cfg
	a.roles = roles
	return nil
}

// openGraphStore connects to Neo4j and wraps the store in the circuit
// breaker when enabled.
func openGraphStore(ctx context.Context, cfg *config.Config) (graph.Store, error) {
	neo, err := graph.NewNeo4jStore(ctx, cfg.Neo4j)
	if err != nil {
		return nil, err
	}
	if !cfg.Breaker.Enabled {
		return neo, nil
	}
	return graph.NewBreakerStore(neo, cfg.Breaker), nil
}

func closeStore(store graph.Store) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logging.Warn().Err(err).Msg("Error closing graph store")
	}
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the MovieQueue version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "moviequeue", version)
			return err
		},
	}
}
