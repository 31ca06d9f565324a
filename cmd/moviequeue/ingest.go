// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviequeue/internal/ingest"
	"github.com/tomtom215/moviequeue/internal/logging"
)

func newIngestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Select top movies per genre and write relationship files",
		Long: `Read the raw title, rating, principal and people TSV files, keep the top
movies of every genre, classify principals into relationship types and write
the intermediate files to ingest.output_dir. Nothing is sent to Neo4j.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := ingest.NewPipeline(a.cfg.Ingest, a.roles, nil, nil).Build(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

func newLoadCmd(a *app) *cobra.Command {
	var resume, noProgress bool
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Upsert movies, people and relationships into Neo4j",
		Long: `Apply the files written by ingest to Neo4j with batched MERGE statements.
With --resume, stages recorded in the checkpoint store are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPipeline(cmd, noProgress, func(p *ingest.Pipeline) error {
				stats, err := p.Load(cmd.Context(), resume)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), stats)
			})
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "skip stages completed by a previous load")
	cmd.Flags().BoolVar(&noProgress, "no-progress", false, "keep checkpoints in memory instead of ingest.progress_path")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var resume bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run ingest followed by load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withPipeline(cmd, false, func(p *ingest.Pipeline) error {
				build, load, err := p.Run(cmd.Context(), resume)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{"build": build, "load": load})
			})
		},
	}
	cmd.Flags().BoolVar(&resume, "resume", false, "skip load stages completed by a previous run")
	return cmd
}

// withPipeline opens the graph store and checkpoint store, runs fn and
// closes both.
func (a *app) withPipeline(cmd *cobra.Command, noProgress bool, fn func(*ingest.Pipeline) error) error {
	var progress ingest.ProgressTracker
	if path := a.cfg.Ingest.ProgressPath; path != "" && !noProgress {
		bp, err := ingest.OpenBadgerProgress(path)
		if err != nil {
			return fmt.Errorf("open checkpoint store: %w", err)
		}
		defer func() {
			if err := bp.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing checkpoint store")
			}
		}()
		progress = bp
	}

	store, err := a.openStore(cmd.Context(), a.cfg)
	if err != nil {
		return fmt.Errorf("connect to graph store: %w", err)
	}
	defer closeStore(store)

	return fn(ingest.NewPipeline(a.cfg.Ingest, a.roles, store, progress))
}
