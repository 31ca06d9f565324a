// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/ratings"
	"github.com/tomtom215/moviequeue/internal/recommend"
	"github.com/tomtom215/moviequeue/internal/session"
)

func newRecommendCmd(a *app) *cobra.Command {
	var (
		user   string
		genres []string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print recommendations for a user as JSON",
		Example: `  moviequeue recommend --user alice --genre Crime --genre Drama
  moviequeue recommend --user alice --genre Crime,Thriller --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.New(cmd.Context(), user)
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("connect to graph store: %w", err)
			}
			defer closeStore(store)

			d, err := a.newDomain(store)
			if err != nil {
				return err
			}
			resp, err := d.engine.Recommend(cmd.Context(), sess, recommend.Request{Genres: genres, Limit: limit})
			if err != nil && !errors.Is(err, recommend.ErrSelectionTooBroad) {
				return err
			}
			if perr := printJSON(cmd.OutOrStdout(), resp); perr != nil {
				return perr
			}
			return err
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username to recommend for")
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "genre to draw candidates from (repeatable or comma separated)")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of recommendations (default from recommend.result_limit)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newRateCmd(a *app) *cobra.Command {
	var (
		user      string
		movieID   string
		rating    float64
		discovery string
	)
	cmd := &cobra.Command{
		Use:     "rate",
		Short:   "Record a user's rating of a movie",
		Example: `  moviequeue rate --user alice --movie tt0113277 --rating 8.5 --discovery "Social Media"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := session.New(cmd.Context(), user)
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context(), a.cfg)
			if err != nil {
				return fmt.Errorf("connect to graph store: %w", err)
			}
			defer closeStore(store)

			d, err := a.newDomain(store)
			if err != nil {
				return err
			}
			saved, err := d.ratings.Submit(cmd.Context(), sess, ratings.RatingInput{
				MovieID:   movieID,
				Rating:    rating,
				Discovery: models.DiscoveryMethod(discovery),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), saved)
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "username")
	cmd.Flags().StringVar(&movieID, "movie", "", "IMDb title id, e.g. tt0113277")
	cmd.Flags().Float64Var(&rating, "rating", 0, "rating in half steps up to recommend.max_rating")
	cmd.Flags().StringVar(&discovery, "discovery", string(models.DiscoveryOther), "how the movie was found")
	for _, name := range []string{"user", "movie", "rating"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
