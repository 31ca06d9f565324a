// MovieQueue - Graph-Backed Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviequeue

package ingest

import (
	"sort"

	"github.com/tomtom215/moviequeue/internal/models"
)

// Selection is the output of SelectTopK.
type Selection struct {
	// Movies holds every selected movie once, with its full genre set.
	Movies []models.Movie

	// PerGenre counts selected movies per genre (at most K each).
	PerGenre map[string]int

	// Unranked counts movies excluded because their vote count was absent
	// or malformed.
	Unranked int
}

// JoinRatings left-joins titles with ratings. Titles without a rating keep
// nil vote and rating fields.
func JoinRatings(titles []TitleRow, ratings map[string]RatingRow) []models.Movie {
	movies := make([]models.Movie, 0, len(titles))
	for _, t := range titles {
		m := models.Movie{
			ID:             t.ID,
			Title:          t.Title,
			RuntimeMinutes: t.RuntimeMinutes,
			Genres:         append([]string(nil), t.Genres...),
			Adult:          t.Adult,
		}
		if t.StartYear != nil {
			m.Year = *t.StartYear
		}
		if r, ok := ratings[t.ID]; ok {
			m.AverageRating = r.AverageRating
			m.NumVotes = r.NumVotes
		}
		movies = append(movies, m)
	}
	return movies
}

// withMatureCategory appends category to an adult movie's genres unless it
// is already present.
func withMatureCategory(m models.Movie, category string) models.Movie {
	if !m.Adult || category == "" {
		return m
	}
	for _, g := range m.Genres {
		if g == category {
			return m
		}
	}
	genres := make([]string, len(m.Genres), len(m.Genres)+1)
	copy(genres, m.Genres)
	m.Genres = append(genres, category)
	return m
}

// SelectTopK keeps, for every genre, the k movies with the most votes.
// Adult movies gain matureCategory as a genre first. Ties keep input order.
// The result is the union over genres in alphabetical genre order,
// deduplicated by id with the first occurrence kept.
func SelectTopK(movies []models.Movie, k int, matureCategory string) Selection {
	sel := Selection{PerGenre: make(map[string]int)}
	if k <= 0 {
		return sel
	}

	ranked := make([]models.Movie, 0, len(movies))
	byGenre := make(map[string][]int)
	for _, m := range movies {
		if m.NumVotes == nil {
			sel.Unranked++
			continue
		}
		m = withMatureCategory(m, matureCategory)
		idx := len(ranked)
		ranked = append(ranked, m)

		seen := make(map[string]bool, len(m.Genres))
		for _, g := range m.Genres {
			if seen[g] {
				continue
			}
			seen[g] = true
			byGenre[g] = append(byGenre[g], idx)
		}
	}

	genres := make([]string, 0, len(byGenre))
	for g := range byGenre {
		genres = append(genres, g)
	}
	sort.Strings(genres)

	picked := make(map[string]bool)
	for _, g := range genres {
		idxs := byGenre[g]
		sort.SliceStable(idxs, func(a, b int) bool {
			return *ranked[idxs[a]].NumVotes > *ranked[idxs[b]].NumVotes
		})
		if len(idxs) > k {
			idxs = idxs[:k]
		}
		sel.PerGenre[g] = len(idxs)
		for _, i := range idxs {
			m := ranked[i]
			if picked[m.ID] {
				continue
			}
			picked[m.ID] = true
			sel.Movies = append(sel.Movies, m)
		}
	}
	return sel
}
