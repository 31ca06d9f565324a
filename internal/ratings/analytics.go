// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ratings

import (
	"context"
	"fmt"

	"github.com/tomtom215/moviequeue/internal/graph"
	"github.com/tomtom215/moviequeue/internal/models"
	"github.com/tomtom215/moviequeue/internal/session"
)

const (
	totalsCypher = `
MATCH (:User {username: $username})-[r:RATED]->(:Movie)
RETURN count(r) AS total, avg(r.rating) AS average`

	distributionCypher = `
MATCH (:User {username: $username})-[r:RATED]->(:Movie)
RETURN r.rating AS rating, count(*) AS count
ORDER BY rating ASC`

	genreCypher = `
MATCH (:User {username: $username})-[r:RATED]->(:Movie)-[:HAS_GENRE]->(g:Genre)
RETURN g.name AS genre, count(*) AS count, avg(r.rating) AS average
ORDER BY count DESC, genre ASC`
)

// Analytics summarizes the session user's ratings. AverageRating is nil when
// the user has rated nothing.
func (s *Service) Analytics(ctx context.Context, sess session.Session) (*models.UserAnalytics, error) {
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	params := map[string]any{"username": sess.Username}
	out := &models.UserAnalytics{
		Username:           sess.Username,
		RatingDistribution: []models.RatingBucket{},
		GenreDistribution:  []models.GenreStat{},
	}

	totals, err := s.store.ExecuteRead(ctx, graph.Query{Name: "rating_totals", Cypher: totalsCypher, Params: params})
	if err != nil {
		return nil, fmt.Errorf("read rating totals: %w", err)
	}
	if len(totals) > 0 {
		if out.TotalRatings, err = graph.DecodeInt(totals[0], "total"); err != nil {
			return nil, err
		}
		if out.AverageRating, err = graph.DecodeOptionalFloat(totals[0], "average"); err != nil {
			return nil, err
		}
	}
	if out.TotalRatings == 0 {
		out.AverageRating = nil
		return out, nil
	}

	buckets, err := s.store.ExecuteRead(ctx, graph.Query{Name: "rating_distribution", Cypher: distributionCypher, Params: params})
	if err != nil {
		return nil, fmt.Errorf("read rating distribution: %w", err)
	}
	for _, r := range buckets {
		var b models.RatingBucket
		if b.Rating, err = graph.DecodeFloat(r, "rating"); err != nil {
			return nil, err
		}
		if b.Count, err = graph.DecodeInt(r, "count"); err != nil {
			return nil, err
		}
		out.RatingDistribution = append(out.RatingDistribution, b)
	}

	genres, err := s.store.ExecuteRead(ctx, graph.Query{Name: "genre_distribution", Cypher: genreCypher, Params: params})
	if err != nil {
		return nil, fmt.Errorf("read genre distribution: %w", err)
	}
	for _, r := range genres {
		var g models.GenreStat
		if g.Genre, err = graph.DecodeString(r, "genre"); err != nil {
			return nil, err
		}
		if g.Count, err = graph.DecodeInt(r, "count"); err != nil {
			return nil, err
		}
		if g.AverageRating, err = graph.DecodeFloat(r, "average"); err != nil {
			return nil, err
		}
		out.GenreDistribution = append(out.GenreDistribution, g)
	}
	return out, nil
}
